package bible

// SchemaItem is one image schema in the curated bank.
type SchemaItem struct {
	ID         string   `json:"id" yaml:"id"`
	Title      string   `json:"title" yaml:"title"`
	Roles      []string `json:"roles,omitempty" yaml:"roles"`
	Coactivate []string `json:"coactivate,omitempty" yaml:"coactivate"`
}

// SchemaBank is the versioned collection of image schemas.
type SchemaBank struct {
	Version string       `json:"version" yaml:"version"`
	Schemas []SchemaItem `json:"schemas" yaml:"schemas"`
}

// MetaphorItem is one conceptual metaphor. Bipolar metaphors carry their
// axis poles; the axis id matches the metaphor id in the curated data.
type MetaphorItem struct {
	ID    string   `json:"id" yaml:"id"`
	Title string   `json:"title" yaml:"title"`
	Poles []string `json:"poles,omitempty" yaml:"poles"`
}

// MetaphorBank is the versioned collection of metaphors.
type MetaphorBank struct {
	Version   string         `json:"version" yaml:"version"`
	Metaphors []MetaphorItem `json:"metaphors" yaml:"metaphors"`
}

// FrameItem is one narrative frame.
type FrameItem struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
}

// FrameBank is the versioned collection of frames.
type FrameBank struct {
	Version string      `json:"version" yaml:"version"`
	Frames  []FrameItem `json:"frames" yaml:"frames"`
}

// IDs of all schemas in the bank, in curated order.
func (b SchemaBank) IDs() []string {
	out := make([]string, 0, len(b.Schemas))
	for _, s := range b.Schemas {
		out = append(out, s.ID)
	}
	return out
}

// IDs of all metaphors in the bank, in curated order.
func (b MetaphorBank) IDs() []string {
	out := make([]string, 0, len(b.Metaphors))
	for _, m := range b.Metaphors {
		out = append(out, m.ID)
	}
	return out
}

// IDs of all frames in the bank, in curated order.
func (b FrameBank) IDs() []string {
	out := make([]string, 0, len(b.Frames))
	for _, f := range b.Frames {
		out = append(out, f.ID)
	}
	return out
}
