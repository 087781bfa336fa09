package events_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/idxwatch/internal/events"
	"github.com/jonesrussell/idxwatch/internal/models"
	"github.com/jonesrussell/idxwatch/internal/testhelpers"
)

func TestNilPublisherIsNoop(t *testing.T) {
	p := events.NewPublisher(nil, testhelpers.NewTestLogger())
	assert.Nil(t, p)

	// Every operation on a nil publisher is a safe no-op.
	assert.NoError(t, p.Publish(context.Background(), events.DisclosureEvent{}))
	assert.NotPanics(t, func() {
		p.PublishCreated(models.Disclosure{ID: "a"})
	})
}
