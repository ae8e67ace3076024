package telegram

// Outgoing is one message to deliver to a chat. A nil Keyboard with
// HideKeyboard set removes any reply keyboard currently shown.
type Outgoing struct {
	ChatID       int64
	Text         string
	Markdown     bool
	NoPreview    bool
	Keyboard     [][]string
	OneTime      bool
	HideKeyboard bool
}

// Messenger delivers outgoing messages. The production implementation
// talks to the Telegram Bot API; tests substitute a recorder.
type Messenger interface {
	Send(msg Outgoing) error
}

// PairRows lays options out two per row, the shape used for long menus
// such as series results. A trailing odd option gets its own row.
func PairRows(options []string) [][]string {
	rows := make([][]string, 0, (len(options)+1)/2)
	for i := 0; i < len(options); i += 2 {
		end := i + 2
		if end > len(options) {
			end = len(options)
		}
		rows = append(rows, options[i:end])
	}
	return rows
}

// SingleRows lays options out one per row, used for short menus where
// each label should stay readable, such as folder paths.
func SingleRows(options []string) [][]string {
	rows := make([][]string, 0, len(options))
	for _, option := range options {
		rows = append(rows, []string{option})
	}
	return rows
}
