package harness

import "github.com/sirupsen/logrus"

// A teardownList collects the release action of every acquisition step.
// Steps are pushed in acquisition order and unwound in reverse, so
// dependent resources are always released before what they depend on.
type teardownList struct {
	log     logrus.FieldLogger
	entries []teardownEntry
	unwound bool
}

type teardownEntry struct {
	name    string
	release func() error
}

func newTeardownList(log logrus.FieldLogger) *teardownList {
	return &teardownList{log: log}
}

func (t *teardownList) push(name string, release func() error) {
	t.entries = append(t.entries, teardownEntry{name: name, release: release})
}

// unwind runs every release action in reverse order. A failing release
// is logged and never stops the remaining ones; once started, the
// unwind always runs to the end and runs at most once.
func (t *teardownList) unwind() {
	if t.unwound {
		return
	}
	t.unwound = true

	for i := len(t.entries) - 1; i >= 0; i-- {
		e := t.entries[i]
		if err := e.release(); err != nil {
			t.log.WithError(err).Errorf("failed to release %s", e.name)
		}
	}
}
