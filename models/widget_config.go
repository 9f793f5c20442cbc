package models

// FAQEntry is one question/answer pair of the static FAQ context.
type FAQEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// WidgetButton is a quick-link shown above the transcript.
type WidgetButton struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// WidgetConfig is the document fetched by the widget at startup.
type WidgetConfig struct {
	BotName         string `json:"botName"`
	BotAvatar       string `json:"botAvatar"`
	WelcomeMessages struct {
		WelcomeBack      string `json:"welcomeBack"`
		AskName          string `json:"askName"`
		NameConfirmation string `json:"nameConfirmation"`
	} `json:"welcomeMessages"`
	Buttons      []WidgetButton `json:"buttons"`
	APIEndpoints struct {
		Chat    string `json:"chat"`
		Upload  string `json:"upload"`
		Session string `json:"session,omitempty"`
	} `json:"apiEndpoints"`
	UI struct {
		TypingIndicator    string `json:"typingIndicator"`
		UploadingIndicator string `json:"uploadingIndicator,omitempty"`
	} `json:"ui"`
}
