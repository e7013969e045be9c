package eventservice

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wagslane/go-rabbitmq"

	"github.com/jovas-007/Olap-practica-jovas/internal/repository"
	"github.com/jovas-007/Olap-practica-jovas/internal/service/etl"
)

type captured struct {
	body []byte
	keys []string
	opts rabbitmq.PublishOptions
}

type fakePublisher struct {
	msgs []captured
	err  error
}

func (f *fakePublisher) PublishWithContext(_ context.Context, data []byte, keys []string, optionFuncs ...func(*rabbitmq.PublishOptions)) error {
	var opts rabbitmq.PublishOptions
	for _, fn := range optionFuncs {
		fn(&opts)
	}
	f.msgs = append(f.msgs, captured{body: data, keys: keys, opts: opts})
	return f.err
}

func TestPublishScheduleUploadedFillsBase(t *testing.T) {
	fake := &fakePublisher{}
	p := NewMQPublisher(fake, nil)

	err := p.PublishScheduleUploaded(context.Background(), ScheduleUploadedEvent{
		Bucket: "horarios",
		Keys:   []string{"uploads/a_ITI.pdf"},
	})
	require.NoError(t, err)
	require.Len(t, fake.msgs, 1)

	msg := fake.msgs[0]
	assert.Equal(t, []string{ScheduleUploadedTopic}, msg.keys)
	assert.Equal(t, ExchangeName, msg.opts.Exchange)
	assert.Equal(t, "application/json", msg.opts.ContentType)

	var e ScheduleUploadedEvent
	require.NoError(t, json.Unmarshal(msg.body, &e))
	assert.NotEmpty(t, e.EventID)
	assert.Equal(t, "schedule.uploaded", e.EventType)
	assert.Equal(t, "1", e.Version)
	assert.False(t, e.OccurredAt.IsZero())
	assert.Equal(t, []string{"uploads/a_ITI.pdf"}, e.Keys)
	assert.Equal(t, e.EventID, msg.opts.MessageID)
}

func TestRunCompletedPublishesReport(t *testing.T) {
	fake := &fakePublisher{}
	p := NewMQPublisher(fake, nil)
	report := etl.RunReport{
		RunID:    uuid.New(),
		Source:   "staging.csv",
		Read:     10,
		Emitted:  24,
		Rejected: map[string]int{etl.ReasonMalformed: 2},
		Facts:    24,
		Slots:    &repository.SlotRefresh{Facts: 24, Slots: 40},
	}

	require.NoError(t, p.RunCompleted(context.Background(), report))
	require.Len(t, fake.msgs, 1)
	assert.Equal(t, []string{LoadCompletedTopic}, fake.msgs[0].keys)

	var e LoadCompletedEvent
	require.NoError(t, json.Unmarshal(fake.msgs[0].body, &e))
	assert.Equal(t, report.RunID, e.RunID)
	assert.Equal(t, report.RunID.String(), e.CorrelationID)
	assert.Equal(t, 24, e.Hechos)
	assert.Equal(t, 40, e.Slots)
	assert.Equal(t, 2, e.Rechazos[etl.ReasonMalformed])
}

func TestPublishWrapsBrokerErrors(t *testing.T) {
	fake := &fakePublisher{err: errors.New("canal cerrado")}
	p := NewMQPublisher(fake, nil)

	err := p.PublishLoadCompleted(context.Background(), LoadCompletedEvent{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), LoadCompletedTopic)
}
