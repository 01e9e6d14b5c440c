package domain

// Message is an inbound chat event, either a typed text message or an inline button press.
type Message struct {
	ID         int
	ChatID     int64
	UserID     int64
	Username   string
	Text       string
	CallbackID string
}

// IsCallback reports whether the message originates from an inline button press.
func (m *Message) IsCallback() bool {
	return m.CallbackID != ""
}

type KeyboardKind int

const (
	KeyboardNone KeyboardKind = iota
	KeyboardInline
	KeyboardReply
	KeyboardRemove
)

// Button is a single keyboard key. Inline buttons carry either a URL or callback data,
// reply buttons only use the label.
type Button struct {
	Label        string
	URL          string
	CallbackData string
}

type Keyboard struct {
	Kind KeyboardKind
	Rows [][]Button
}

func InlineKeyboard(rows ...[]Button) Keyboard {
	return Keyboard{Kind: KeyboardInline, Rows: rows}
}

func ReplyKeyboard(rows ...[]Button) Keyboard {
	return Keyboard{Kind: KeyboardReply, Rows: rows}
}

func RemoveKeyboard() Keyboard {
	return Keyboard{Kind: KeyboardRemove}
}

// Company holds the registry facts extracted for one tax identifier.
type Company struct {
	ShortName string `json:"short_name"`
	FullName  string `json:"full_name"`
	Address   string `json:"address"`
}

// Complete reports whether all three fields were extracted.
func (c Company) Complete() bool {
	return c.ShortName != "" && c.FullName != "" && c.Address != ""
}

// LookupOutcome is the result of looking up a single identifier. Company is only set when Found is true.
type LookupOutcome struct {
	Identifier string  `json:"identifier"`
	Found      bool    `json:"found"`
	Company    Company `json:"company"`
}

func FoundOutcome(identifier string, company Company) LookupOutcome {
	return LookupOutcome{Identifier: identifier, Found: true, Company: company}
}

func NotFoundOutcome(identifier string) LookupOutcome {
	return LookupOutcome{Identifier: identifier}
}
