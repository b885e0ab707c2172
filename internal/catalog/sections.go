package catalog

import "github.com/copilot-learning/backend/internal/models"

var courseSections = []models.Section{
	{
		ID:          1,
		Title:       "What is GitHub Copilot?",
		Description: "Understanding GitHub Copilot as an AI pair programmer",
		Difficulty:  models.DifficultyBeginner,
		Duration:    2.5,
		Questions: []models.Question{
			{
				ID:     "copilot-1-1",
				Prompt: "What is GitHub Copilot?",
				Kind:   models.KindMultipleChoice,
				Options: []string{
					"GitHub Copilot is an AI pair programmer that offers real-time code suggestions.",
					"GitHub Copilot is OpenAI's new autonomous agent for running end-to-end tests.",
					"GitHub Copilot is a Git repository hosting service built by Microsoft.",
					"GitHub Copilot is a package manager integrated into Visual Studio Code.",
				},
				Correct:     models.IndexAnswer(0),
				Explanation: "GitHub Copilot is an AI pair programmer that offers real-time code suggestions to help developers write code more efficiently.",
				TimeLimit:   30,
				Points:      1,
				Category:    models.CategoryWarmup,
			},
			{
				ID:     "copilot-1-2",
				Prompt: "Which statement best describes Copilot's AI Pair Programmer role?",
				Kind:   models.KindMultipleChoice,
				Options: []string{
					"It offers context-aware, in-line code completions as you type.",
					"It automatically merges pull requests based on test coverage.",
					"It hosts live coding sessions between remote developers.",
					"It compiles code into optimized binaries for production.",
				},
				Correct:     models.IndexAnswer(0),
				Explanation: "Copilot acts as an AI pair programmer by offering context-aware, in-line code completions as you type, helping you write code faster.",
				TimeLimit:   30,
				Points:      1,
				Category:    models.CategoryGeneral,
			},
			{
				ID:     "copilot-1-3",
				Prompt: "How does GitHub Copilot boost developer productivity?",
				Kind:   models.KindMultipleChoice,
				Options: []string{
					"By offloading boilerplate and repetitive coding tasks to free you for logic.",
					"By managing project dependencies across multiple services.",
					"By automatically writing system architecture documentation.",
					"By deploying code directly to cloud environments.",
				},
				Correct:     models.IndexAnswer(0),
				Explanation: "GitHub Copilot boosts productivity by handling boilerplate and repetitive coding tasks, allowing developers to focus on business logic and creative problem-solving.",
				TimeLimit:   30,
				Points:      1,
				Category:    models.CategoryGeneral,
			},
			{
				ID:     "copilot-1-4",
				Prompt: "Which underlying AI model powers GitHub Copilot's code suggestions?",
				Kind:   models.KindMultipleChoice,
				Options: []string{
					"OpenAI Codex.",
					"Google's BERT.",
					"Facebook's RoBERTa.",
					"Microsoft's Turing-NLG.",
				},
				Correct:     models.IndexAnswer(0),
				Explanation: "GitHub Copilot is powered by OpenAI Codex, a specialized AI model trained on code from public repositories.",
				TimeLimit:   30,
				Points:      1,
				Category:    models.CategoryGeneral,
			},
			{
				ID:     "copilot-1-5",
				Prompt: "GitHub Copilot requires which of the following to get started?",
				Kind:   models.KindMultipleChoice,
				Options: []string{
					"A valid Copilot license or free trial subscription.",
					"A private GitHub Enterprise Server installation.",
					"A one-time perpetual license purchased from the VS Code marketplace.",
					"No authentication, just install the VS Code extension.",
				},
				Correct:     models.IndexAnswer(0),
				Explanation: "To use GitHub Copilot, you need a valid Copilot license or free trial subscription, which can be obtained through GitHub.",
				TimeLimit:   30,
				Points:      1,
				Category:    models.CategoryQuickfire,
			},
		},
	},
	{
		ID:          2,
		Title:       "Key Features and Plans",
		Description: "Exploring GitHub Copilot's features and subscription options",
		Difficulty:  models.DifficultyBeginner,
		Duration:    2.5,
		Questions: []models.Question{
			{
				ID:     "copilot-2-1",
				Prompt: "Which feature suggests entire functions or code blocks inline?",
				Kind:   models.KindMultipleChoice,
				Options: []string{
					"Inline Code Completion.",
					"Copilot Chat.",
					"Pull Request Review.",
					"CLI Code Runner.",
				},
				Correct:     models.IndexAnswer(0),
				Explanation: "Inline Code Completion is the feature that suggests entire functions or code blocks directly in your editor as you type.",
				TimeLimit:   30,
				Points:      1,
				Category:    models.CategoryWarmup,
			},
			{
				ID:     "copilot-2-2",
				Prompt: "GitHub Copilot supports approximately how many programming languages?",
				Kind:   models.KindMultipleChoice,
				Options: []string{
					"Over 70.",
					"Around 20.",
					"Exactly 50.",
					"Fewer than 10.",
				},
				Correct:     models.IndexAnswer(0),
				Explanation: "GitHub Copilot supports over 70 programming languages, making it versatile for various development environments.",
				TimeLimit:   30,
				Points:      1,
				Category:    models.CategoryGeneral,
			},
			{
				ID:     "copilot-2-3",
				Prompt: "Which Copilot capability enables automatic PR reviews and Q&A within VS Code?",
				Kind:   models.KindMultipleChoice,
				Options: []string{
					"Copilot Chat.",
					"Inline Code Suggestions.",
					"Ghost Text.",
					"Live Share.",
				},
				Correct:     models.IndexAnswer(0),
				Explanation: "Copilot Chat enables automatic PR reviews and Q&A functionality directly within VS Code and other supported editors.",
				TimeLimit:   30,
				Points:      1,
				Category:    models.CategoryGeneral,
			},
			{
				ID:     "copilot-2-4",
				Prompt: "Which subscription tier is designed for large organizations with policy controls and audit logs?",
				Kind:   models.KindMultipleChoice,
				Options: []string{
					"Copilot Business.",
					"Copilot Individual.",
					"Copilot Free.",
					"Copilot CLI.",
				},
				Correct:     models.IndexAnswer(0),
				Explanation: "Copilot Business is designed for large organizations and includes advanced features like policy controls and audit logs.",
				TimeLimit:   30,
				Points:      1,
				Category:    models.CategoryGeneral,
			},
			{
				ID:     "copilot-2-5",
				Prompt: "What does the \"Extended Capabilities\" plan include?",
				Kind:   models.KindMultipleChoice,
				Options: []string{
					"Copilot Chat, CLI tools, and automatic code review.",
					"Only inline suggestions, no chat.",
					"A GUI for repository visualization.",
					"Built-in CI/CD pipelines.",
				},
				Correct:     models.IndexAnswer(0),
				Explanation: "The Extended Capabilities plan includes Copilot Chat, CLI tools, and automatic code review features beyond basic inline suggestions.",
				TimeLimit:   30,
				Points:      1,
				Category:    models.CategoryQuickfire,
			},
		},
	},
	{
		ID:          3,
		Title:       "Working with VS Code",
		Description: "Using GitHub Copilot effectively in Visual Studio Code",
		Difficulty:  models.DifficultyIntermediate,
		Duration:    2.5,
		Questions: []models.Question{
			{
				ID:     "copilot-3-1",
				Prompt: "What are \"ghost text\" suggestions in VS Code?",
				Kind:   models.KindMultipleChoice,
				Options: []string{
					"Light-gray, inline code completions shown as you type.",
					"A floating help panel with sample snippets.",
					"An audio narration of code changes.",
					"An external browser window with documentation.",
				},
				Correct:     models.IndexAnswer(0),
				Explanation: "Ghost text suggestions are the light-gray, inline code completions that appear as you type in VS Code, showing Copilot's suggestions.",
				TimeLimit:   30,
				Points:      1,
				Category:    models.CategoryWarmup,
			},
			{
				ID:     "copilot-3-2",
				Prompt: "To accept a Copilot suggestion in VS Code, which key do you press by default?",
				Kind:   models.KindMultipleChoice,
				Options: []string{
					"Tab.",
					"Enter.",
					"Ctrl + Space.",
					"Esc.",
				},
				Correct:     models.IndexAnswer(0),
				Explanation: "By default, you press the Tab key to accept a Copilot suggestion in VS Code.",
				TimeLimit:   30,
				Points:      1,
				Category:    models.CategoryGeneral,
			},
			{
				ID:     "copilot-3-3",
				Prompt: "How can you cycle through multiple Copilot suggestions?",
				Kind:   models.KindMultipleChoice,
				Options: []string{
					"Use the Copilot panel or associated keyboard shortcuts.",
					"Reload the VS Code window.",
					"Open a new file buffer.",
					"Press F5.",
				},
				Correct:     models.IndexAnswer(0),
				Explanation: "You can cycle through multiple Copilot suggestions using the Copilot panel or keyboard shortcuts like Alt+] and Alt+[.",
				TimeLimit:   30,
				Points:      1,
				Category:    models.CategoryGeneral,
			},
			{
				ID:     "copilot-3-4",
				Prompt: "Copilot's adaptive suggestions rely on which of the following?",
				Kind:   models.KindMultipleChoice,
				Options: []string{
					"Context from the current file and other open files.",
					"Your Git commit history only.",
					"The default settings.json file in VS Code.",
					"Your system's CPU usage.",
				},
				Correct:     models.IndexAnswer(0),
				Explanation: "Copilot's adaptive suggestions rely on context from the current file and other open files to provide relevant code completions.",
				TimeLimit:   30,
				Points:      1,
				Category:    models.CategoryGeneral,
			},
			{
				ID:     "copilot-3-5",
				Prompt: "If you don't want a suggestion, what should you do?",
				Kind:   models.KindMultipleChoice,
				Options: []string{
					"Press Esc or simply ignore it.",
					"Delete the entire file.",
					"Uninstall the Copilot extension.",
					"Restart VS Code.",
				},
				Correct:     models.IndexAnswer(0),
				Explanation: "If you don't want a Copilot suggestion, you can simply press Esc to dismiss it or ignore it and continue typing.",
				TimeLimit:   30,
				Points:      1,
				Category:    models.CategoryQuickfire,
			},
		},
	},
	{
		ID:          4,
		Title:       "Framework-Specific Support",
		Description: "How GitHub Copilot works with different frameworks",
		Difficulty:  models.DifficultyIntermediate,
		Duration:    2.5,
		Questions: []models.Question{
			{
				ID:     "copilot-4-1",
				Prompt: "In a Spring Boot app, typing @GetMapping and a method stub will most likely prompt Copilot to:",
				Kind:   models.KindMultipleChoice,
				Options: []string{
					"Suggest a complete controller method implementation.",
					"Generate a Dockerfile.",
					"Create a new JPA database schema.",
					"Write unit tests only.",
				},
				Correct:     models.IndexAnswer(0),
				Explanation: "When you type @GetMapping and a method stub in Spring Boot, Copilot will suggest a complete controller method implementation based on the context.",
				TimeLimit:   30,
				Points:      1,
				Category:    models.CategoryWarmup,
			},
			{
				ID:     "copilot-4-2",
				Prompt: "Copilot can assist with Vue single-file components by generating which sections?",
				Kind:   models.KindMultipleChoice,
				Options: []string{
					"Both <template> HTML and <script> logic.",
					"Only CSS styles.",
					"Commit messages for Git.",
					"Package.json dependencies.",
				},
				Correct:     models.IndexAnswer(0),
				Explanation: "Copilot can assist with Vue single-file components by generating both the <template> HTML structure and <script> logic sections.",
				TimeLimit:   30,
				Points:      1,
				Category:    models.CategoryGeneral,
			},
			{
				ID:     "copilot-4-3",
				Prompt: "What does Copilot's \"framework awareness\" enable?",
				Kind:   models.KindMultipleChoice,
				Options: []string{
					"Generating code using common APIs like Spring's @Autowired.",
					"Automatically updating library versions.",
					"Hosting your application in the cloud.",
					"Encrypting your source code.",
				},
				Correct:     models.IndexAnswer(0),
				Explanation: "Framework awareness enables Copilot to generate code using common APIs and patterns specific to frameworks like Spring's @Autowired annotation.",
				TimeLimit:   30,
				Points:      1,
				Category:    models.CategoryGeneral,
			},
			{
				ID:     "copilot-4-4",
				Prompt: "For Java classes, how might you prompt Copilot to create business logic?",
				Kind:   models.KindMultipleChoice,
				Options: []string{
					"Write a comment describing the method's purpose (e.g., calculate rewards).",
					"Specify database connection strings.",
					"List all Git branches.",
					"Trigger a full project rebuild.",
				},
				Correct:     models.IndexAnswer(0),
				Explanation: "You can prompt Copilot to create business logic by writing descriptive comments about the method's purpose, like '// calculate rewards'.",
				TimeLimit:   30,
				Points:      1,
				Category:    models.CategoryGeneral,
			},
			{
				ID:     "copilot-4-5",
				Prompt: "Which scenario shows Copilot's Vue assistance in action?",
				Kind:   models.KindMultipleChoice,
				Options: []string{
					"You write <!-- form with input and button --> in <template> and it scaffolds the component.",
					"You push to production and it auto-scales your cluster.",
					"It opens an external browser window for documentation.",
					"It converts your code to Python.",
				},
				Correct:     models.IndexAnswer(0),
				Explanation: "Copilot's Vue assistance is demonstrated when you write HTML comments like '<!-- form with input and button -->' and it scaffolds the entire component structure.",
				TimeLimit:   30,
				Points:      1,
				Category:    models.CategoryQuickfire,
			},
		},
	},
	{
		ID:          5,
		Title:       "Responsible Use and Limitations",
		Description: "Understanding responsible AI practices with GitHub Copilot",
		Difficulty:  models.DifficultyAdvanced,
		Duration:    2.5,
		Questions: []models.Question{
			{
				ID:     "copilot-5-1",
				Prompt: "Which practice is not recommended when using Copilot?",
				Kind:   models.KindMultipleChoice,
				Options: []string{
					"Blindly trusting all suggestions without review.",
					"Reviewing and testing AI-generated code.",
					"Adding comments to note AI-assisted sections.",
					"Using linters and security scanners on generated code.",
				},
				Correct:     models.IndexAnswer(0),
				Explanation: "Blindly trusting all suggestions without review is not recommended. Always review and test AI-generated code before using it in production.",
				TimeLimit:   30,
				Points:      1,
				Category:    models.CategoryWarmup,
			},
			{
				ID:     "copilot-5-2",
				Prompt: "Why should you be cautious of license issues with Copilot?",
				Kind:   models.KindMultipleChoice,
				Options: []string{
					"It may suggest code that resembles public-licensed snippets.",
					"It automatically applies GPL to your code.",
					"It encrypts all outputs.",
					"It refuses to suggest any code.",
				},
				Correct:     models.IndexAnswer(0),
				Explanation: "You should be cautious because Copilot may suggest code that resembles public-licensed snippets, which could have licensing implications for your project.",
				TimeLimit:   30,
				Points:      1,
				Category:    models.CategoryGeneral,
			},
			{
				ID:     "copilot-5-3",
				Prompt: "\"You're the driver\" in Copilot usage means:",
				Kind:   models.KindMultipleChoice,
				Options: []string{
					"You remain responsible for design, architecture, and final quality.",
					"Copilot autonomously makes all decisions.",
					"You delegate code reviews entirely to Copilot.",
					"Copilot writes your entire README.md.",
				},
				Correct:     models.IndexAnswer(0),
				Explanation: "'You're the driver' means you remain responsible for design decisions, architecture choices, and ensuring the final quality of your code.",
				TimeLimit:   30,
				Points:      1,
				Category:    models.CategoryGeneral,
			},
			{
				ID:     "copilot-5-4",
				Prompt: "Which is a known limitation of Copilot's context window?",
				Kind:   models.KindMultipleChoice,
				Options: []string{
					"It only \"reads\" a limited number of lines around the cursor.",
					"It tracks your file changes in real time.",
					"It remembers every file in the repository indefinitely.",
					"It can predict issues outside your code context.",
				},
				Correct:     models.IndexAnswer(0),
				Explanation: "A known limitation is that Copilot only 'reads' a limited number of lines around the cursor, so it may not have complete project context.",
				TimeLimit:   30,
				Points:      1,
				Category:    models.CategoryGeneral,
			},
			{
				ID:     "copilot-5-5",
				Prompt: "What security risk might Copilot introduce if unchecked?",
				Kind:   models.KindMultipleChoice,
				Options: []string{
					"Suggesting code vulnerable to SQL injection.",
					"Automatically encrypting your database credentials.",
					"Removing all test cases.",
					"Blocking network access.",
				},
				Correct:     models.IndexAnswer(0),
				Explanation: "If unchecked, Copilot might suggest code with security vulnerabilities like SQL injection, which is why code review is essential.",
				TimeLimit:   30,
				Points:      1,
				Category:    models.CategoryQuickfire,
			},
		},
	},
	{
		ID:          6,
		Title:       "Hands-On Examples Overview",
		Description: "Practical examples of using GitHub Copilot",
		Difficulty:  models.DifficultyAdvanced,
		Duration:    2.5,
		Questions: []models.Question{
			{
				ID:     "copilot-6-1",
				Prompt: "In the Java demo (\"CustomerRewards\"), you'd start by writing a comment such as // calculate reward points; Copilot will then:",
				Kind:   models.KindMultipleChoice,
				Options: []string{
					"Generate the method stub and implementation for computing points.",
					"Create a Docker Compose file.",
					"Publish the code to npm.",
					"Delete the class.",
				},
				Correct:     models.IndexAnswer(0),
				Explanation: "In the Java demo, writing '// calculate reward points' prompts Copilot to generate the method stub and implementation for computing reward points.",
				TimeLimit:   30,
				Points:      1,
				Category:    models.CategoryWarmup,
			},
			{
				ID:     "copilot-6-2",
				Prompt: "For the Vue \"Feedback Form\" example, which prompt helps scaffold the component?",
				Kind:   models.KindMultipleChoice,
				Options: []string{
					"<!-- a form with an input and button --> in the <template> section.",
					"@GetMapping(\"/form\").",
					"import React from 'react'.",
					"docker run vuejs.",
				},
				Correct:     models.IndexAnswer(0),
				Explanation: "For the Vue Feedback Form example, writing '<!-- a form with an input and button -->' in the <template> section helps scaffold the component.",
				TimeLimit:   30,
				Points:      1,
				Category:    models.CategoryGeneral,
			},
			{
				ID:     "copilot-6-3",
				Prompt: "What is the goal of the interactive debug scenario?",
				Kind:   models.KindMultipleChoice,
				Options: []string{
					"Show how Copilot Chat or /fix commands can diagnose and fix a bug.",
					"Automatically deploy the app to production.",
					"Convert the project to a monolithic architecture.",
					"Migrate the code to GitLab.",
				},
				Correct:     models.IndexAnswer(0),
				Explanation: "The interactive debug scenario demonstrates how Copilot Chat or /fix commands can help diagnose and fix bugs in your code.",
				TimeLimit:   30,
				Points:      1,
				Category:    models.CategoryGeneral,
			},
			{
				ID:     "copilot-6-4",
				Prompt: "When generating unit tests in the demo, you'd type // test cases for the above function; Copilot will:",
				Kind:   models.KindMultipleChoice,
				Options: []string{
					"Suggest JUnit or Jest test methods covering edge cases.",
					"Generate a new microservice.",
					"Launch a browser.",
					"Create a Kubernetes pod.",
				},
				Correct:     models.IndexAnswer(0),
				Explanation: "When you type '// test cases for the above function', Copilot will suggest JUnit or Jest test methods that cover various edge cases.",
				TimeLimit:   30,
				Points:      1,
				Category:    models.CategoryGeneral,
			},
			{
				ID:     "copilot-6-5",
				Prompt: "The hands-on wrap-up emphasizes that after accepting suggestions you should always:",
				Kind:   models.KindMultipleChoice,
				Options: []string{
					"Review and run tests to verify correctness.",
					"Immediately merge without checks.",
					"Delete all comments.",
					"Uninstall Copilot.",
				},
				Correct:     models.IndexAnswer(0),
				Explanation: "The hands-on wrap-up emphasizes that you should always review and run tests to verify the correctness of Copilot's suggestions.",
				TimeLimit:   30,
				Points:      1,
				Category:    models.CategoryQuickfire,
			},
		},
	},
}
