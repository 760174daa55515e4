package domain

// QuestionRecord is a raw question as authored in the content source.
// Correct must index into Options; everything else is optional.
type QuestionRecord struct {
	Text             string   `yaml:"text" json:"text"`
	Options          []string `yaml:"options" json:"options"`
	Correct          int      `yaml:"correct" json:"correct"`
	Weight           int      `yaml:"weight" json:"weight,omitempty"`
	NotReady         string   `yaml:"not_ready" json:"not_ready,omitempty"`
	ScamType         string   `yaml:"scam_type" json:"scam_type,omitempty"`
	Icon             string   `yaml:"icon" json:"icon,omitempty"`
	Explanation      string   `yaml:"explanation" json:"explanation,omitempty"`
	WrongConsequence string   `yaml:"wrong_consequence" json:"wrong_consequence,omitempty"`
}

// EngineQuestion is a QuestionRecord prepared for play: options reshuffled,
// CorrectAnswer pointing at the correct option's new position, defaults
// applied. Explanation, WrongConsequence and NotReady stay independent fields
// even though they may share a fallback at normalization time.
type EngineQuestion struct {
	Text             string   `json:"text"`
	Options          []string `json:"options"`
	CorrectAnswer    int      `json:"correctAnswer"`
	Weight           int      `json:"weight"`
	NotReady         string   `json:"notReady,omitempty"`
	ScamType         string   `json:"scamType"`
	Icon             string   `json:"icon"`
	Explanation      string   `json:"explanation"`
	WrongConsequence string   `json:"wrongConsequence"`
}

// TimerText carries the copy shown around the countdown.
type TimerText struct {
	LowHints      []string `yaml:"low_hints" json:"low_hints,omitempty"`
	BonusMessages []string `yaml:"bonus_messages" json:"bonus_messages,omitempty"`
	GraceMessages []string `yaml:"grace_messages" json:"grace_messages,omitempty"`
}

// RankingTier maps a percentage lower bound (inclusive) to candidate titles
// and an optional review template with {title}, {missed} and {not_ready_list}
// placeholders.
type RankingTier struct {
	ID         string   `yaml:"id" json:"id"`
	MinPercent int      `yaml:"min_percent" json:"min_percent"`
	Titles     []string `yaml:"titles" json:"titles"`
	Review     string   `yaml:"review" json:"review,omitempty"`
}

// Rankings is the full tier table.
type Rankings struct {
	Tiers []RankingTier `yaml:"tiers" json:"tiers"`
}

// GeneralText is display copy passed through to the presentation layer.
type GeneralText struct {
	Tagline       string `yaml:"tagline" json:"tagline,omitempty"`
	Warning       string `yaml:"warning" json:"warning,omitempty"`
	Encouragement string `yaml:"encouragement" json:"encouragement,omitempty"`
	Share         string `yaml:"share" json:"share,omitempty"`
	Footer        string `yaml:"footer" json:"footer,omitempty"`
	Version       string `yaml:"version" json:"version,omitempty"`
}

// ContentPack bundles everything the engine needs from the content source.
type ContentPack struct {
	ID          string           `json:"id"`
	Questions   []QuestionRecord `json:"questions"`
	Timer       TimerText        `json:"timer"`
	Rankings    Rankings         `json:"rankings"`
	GeneralText GeneralText      `json:"general_text"`
}

// MissedQuestion is the persisted shape of a question the player got wrong.
type MissedQuestion struct {
	Text     string `json:"text"`
	NotReady string `json:"not_ready,omitempty"`
}

// ResultSummary is frozen the moment a session completes; repeated reads must
// never re-randomize the title or review line.
type ResultSummary struct {
	Score        int              `json:"score"`
	MaxScore     int              `json:"maxScore"`
	CorrectCount int              `json:"correctCount"`
	MissedCount  int              `json:"missedCount"`
	Percent      int              `json:"percent"`
	Title        string           `json:"title"`
	ReviewLine   string           `json:"reviewLine,omitempty"`
	Missed       []MissedQuestion `json:"missed,omitempty"`
}
