package progress

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

func TestMemorySessionsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemorySessions()

	sess := &Session{LearnerID: "learner-1", SectionID: 1, State: StateInProgress, Answered: []string{"s1q1"}}
	m.Save(ctx, sess)
	sess.Answered[0] = "mutated"

	got, err := m.Get(ctx, "learner-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Answered[0] != "s1q1" {
		t.Error("saved session shares memory with the caller")
	}

	if n, _ := m.Count(ctx); n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
	m.Delete(ctx, "learner-1")
	if _, err := m.Get(ctx, "learner-1"); !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
}

func TestDecodeSession(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{"valid", `{"learner_id":"l-1","section_id":3,"state":"in_progress","question_index":2}`, false},
		{"not json", `{"learner_id":`, true},
		{"missing section", `{"learner_id":"l-1"}`, true},
		{"missing learner", `{"section_id":1}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeSession([]byte(tt.payload))
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRedisSessions(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx := context.Background()
	client, err := ConnectRedis(ctx, url)
	if err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	defer client.Close()

	r := NewRedisSessions(client, time.Minute)
	id := "test-" + time.Now().Format("150405.000000")
	defer r.Delete(ctx, id)

	if err := r.Save(ctx, &Session{LearnerID: id, SectionID: 2, State: StateInProgress}); err != nil {
		t.Fatal(err)
	}
	got, err := r.Get(ctx, id)
	if err != nil || got.SectionID != 2 {
		t.Fatalf("got (%+v, %v)", got, err)
	}

	client.Set(ctx, sessionKey(id), "{broken", time.Minute)
	if _, err := r.Get(ctx, id); !errors.Is(err, ErrNoSession) {
		t.Errorf("malformed payload should read as absent, got %v", err)
	}
}
