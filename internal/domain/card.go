package domain

const defaultCardMessage = "Processing instructions..."

// TaskCard is a TaskUpdate decorated with its display attributes.
type TaskCard struct {
	TaskUpdate
	ShortID  string       `json:"short_id"`
	Title    string       `json:"title"`
	Bucket   StatusBucket `json:"bucket"`
	Progress int          `json:"progress"`
	Tone     string       `json:"tone"`
}

func NewTaskCard(u TaskUpdate) TaskCard {
	view := DescribeStatus(u.Status)
	card := TaskCard{
		TaskUpdate: u,
		ShortID:    shortID(u.ID, 6),
		Title:      view.Title,
		Bucket:     view.Bucket,
		Progress:   view.Progress,
		Tone:       view.Tone,
	}
	if card.Message == "" {
		card.Message = defaultCardMessage
	}
	return card
}

func NewTaskCards(updates []TaskUpdate) []TaskCard {
	cards := make([]TaskCard, len(updates))
	for i, u := range updates {
		cards[i] = NewTaskCard(u)
	}
	return cards
}

func shortID(id string, n int) string {
	r := []rune(id)
	if len(r) <= n {
		return id
	}
	return string(r[:n])
}
