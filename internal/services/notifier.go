package services

import (
	"context"
	"errors"
	"fmt"

	"greenleaf/internal/menu"
	"greenleaf/internal/metrics"
)

type namedNotifier struct {
	name string
	n    Notifier
}

// MultiNotifier pushes to every channel and joins the failures. One
// failing channel does not stop the others.
type MultiNotifier struct {
	channels []namedNotifier
}

func NewMultiNotifier() *MultiNotifier {
	return &MultiNotifier{}
}

func (m *MultiNotifier) Add(name string, n Notifier) *MultiNotifier {
	if n != nil {
		m.channels = append(m.channels, namedNotifier{name: name, n: n})
	}
	return m
}

func (m *MultiNotifier) Len() int { return len(m.channels) }

func (m *MultiNotifier) Push(ctx context.Context, v menu.View) error {
	var errs []error
	for _, ch := range m.channels {
		if err := ch.n.Push(ctx, v); err != nil {
			metrics.RecordNotifyError(ch.name)
			errs = append(errs, fmt.Errorf("%s: %w", ch.name, err))
		}
	}
	return errors.Join(errs...)
}
