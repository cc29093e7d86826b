package llm

import "context"

// Fake is a canned Client for tests. It records the corpus it was
// given and returns the configured reply or error.
type Fake struct {
	Reply string
	Err   error

	Corpus string
}

var _ Client = (*Fake)(nil)

func (f *Fake) Infer(_ context.Context, corpus string) (string, error) {
	f.Corpus = corpus
	if f.Err != nil {
		return "", f.Err
	}
	return f.Reply, nil
}
