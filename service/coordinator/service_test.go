package coordinator

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"

	"github.com/simpool/simpool/model"
	"github.com/simpool/simpool/service/event"
	"github.com/simpool/simpool/service/journal"
	"github.com/simpool/simpool/service/mailbox"
	"github.com/simpool/simpool/service/messaging/memory"
	"github.com/simpool/simpool/service/text"
)

func newTestCoordinator(t *testing.T, capacity int, textData string, options ...Option) *Service {
	t.Helper()
	exchange, err := mailbox.New(capacity)
	require.NoError(t, err)
	options = append([]Option{
		WithExchange(exchange),
		WithTextSource(text.New([]byte(textData))),
		WithJournalFactory(journal.NewFactory(afs.New(), "mem://localhost/simpool/coordinator/"+t.Name())),
		WithRand(rand.New(rand.NewSource(1))),
	}, options...)
	srv, err := New(options...)
	require.NoError(t, err)
	return srv
}

func mustPlan(t *testing.T, actions ...model.Action) *model.Plan {
	t.Helper()
	plan, err := model.NewPlan(actions)
	require.NoError(t, err)
	return plan
}

func TestNewValidation(t *testing.T) {
	_, err := New()
	assert.Error(t, err)

	exchange, err := mailbox.New(1)
	require.NoError(t, err)
	defer exchange.Teardown()
	_, err = New(WithExchange(exchange))
	assert.Error(t, err)
	_, err = New(WithExchange(exchange), WithTextSource(text.New(nil)))
	assert.Error(t, err)
}

func TestRunSingleWorker(t *testing.T) {
	srv := newTestCoordinator(t, 2, "alpha\nbeta\ngamma\n")
	plan := mustPlan(t,
		model.Action{Timestamp: 0, Label: "C1", Kind: model.ActionSpawn},
		model.Action{Timestamp: 2, Label: "C1", Kind: model.ActionTerminate},
		model.Action{Timestamp: 3, Label: "EXIT", Kind: model.ActionHaltAll},
	)

	result, err := srv.Run(context.Background(), plan)
	require.NoError(t, err)

	// deliveries happen at t=0 and t=1; C1 is gone before the t=2 delivery
	assert.Equal(t, 4, result.Timesteps)
	assert.Equal(t, 2, result.Deliveries)
	require.Len(t, result.Workers, 1)

	report := result.Workers[0]
	assert.Equal(t, "C1", report.Label)
	assert.Equal(t, 0, report.ActivatedAt)
	assert.Equal(t, 2, report.TerminatedAt)
	assert.Equal(t, 2, report.ActiveFor())
	assert.Equal(t, 2, report.Lines)
	assert.NoError(t, report.Err)
	assert.Equal(t, 0, srv.ActiveCount())
}

func TestRunSpawnDroppedWhenPoolFull(t *testing.T) {
	srv := newTestCoordinator(t, 1, "alpha\n")
	plan := mustPlan(t,
		model.Action{Timestamp: 0, Label: "C1", Kind: model.ActionSpawn},
		model.Action{Timestamp: 0, Label: "C2", Kind: model.ActionSpawn},
		model.Action{Timestamp: 1, Label: "EXIT", Kind: model.ActionHaltAll},
	)

	result, err := srv.Run(context.Background(), plan)
	require.NoError(t, err)

	// C2 never started; only C1 is reaped, by the final sweep at t=1
	require.Len(t, result.Workers, 1)
	assert.Equal(t, "C1", result.Workers[0].Label)
	assert.Equal(t, 1, result.Workers[0].TerminatedAt)
	assert.Equal(t, 2, result.Deliveries)
}

func TestRunTerminateUnknownLabel(t *testing.T) {
	srv := newTestCoordinator(t, 2, "alpha\n")
	plan := mustPlan(t,
		model.Action{Timestamp: 0, Label: "C1", Kind: model.ActionSpawn},
		model.Action{Timestamp: 1, Label: "C9", Kind: model.ActionTerminate},
		model.Action{Timestamp: 2, Label: "EXIT", Kind: model.ActionHaltAll},
	)

	result, err := srv.Run(context.Background(), plan)
	require.NoError(t, err)

	// the unknown terminate is a warning; C1 survives to the final sweep
	require.Len(t, result.Workers, 1)
	assert.Equal(t, "C1", result.Workers[0].Label)
	assert.Equal(t, 2, result.Workers[0].TerminatedAt)
	assert.Equal(t, 3, result.Deliveries)
}

func TestRunDuplicateTerminateSameTimestep(t *testing.T) {
	queue := memory.NewQueue[event.Event](memory.DefaultConfig())
	srv := newTestCoordinator(t, 2, "alpha\n", WithEventPublisher(event.NewPublisher(queue)))
	plan := mustPlan(t,
		model.Action{Timestamp: 0, Label: "C1", Kind: model.ActionSpawn},
		model.Action{Timestamp: 1, Label: "C1", Kind: model.ActionTerminate},
		model.Action{Timestamp: 1, Label: "C1", Kind: model.ActionTerminate},
		model.Action{Timestamp: 2, Label: "EXIT", Kind: model.ActionHaltAll},
	)

	result, err := srv.Run(context.Background(), plan)
	require.NoError(t, err)

	// the first terminate reaps C1; the second finds no active C1 and
	// degrades to a warning
	require.Len(t, result.Workers, 1)
	assert.Equal(t, 1, result.Workers[0].TerminatedAt)

	ctx := context.Background()
	counts := map[event.Kind]int{}
	for queue.Size() > 0 {
		msg, cErr := queue.Consume(ctx)
		require.NoError(t, cErr)
		counts[msg.T().Kind]++
		require.NoError(t, msg.Ack())
	}
	assert.Equal(t, 1, counts[event.KindReaped])
	assert.Equal(t, 1, counts[event.KindWarning])
}

func TestRunDeliveriesSplitAcrossWorkers(t *testing.T) {
	srv := newTestCoordinator(t, 2, "alpha\nbeta\n")
	plan := mustPlan(t,
		model.Action{Timestamp: 0, Label: "C1", Kind: model.ActionSpawn},
		model.Action{Timestamp: 0, Label: "C2", Kind: model.ActionSpawn},
		model.Action{Timestamp: 4, Label: "EXIT", Kind: model.ActionHaltAll},
	)

	result, err := srv.Run(context.Background(), plan)
	require.NoError(t, err)

	assert.Equal(t, 5, result.Deliveries)
	require.Len(t, result.Workers, 2)

	// every delivered line landed in exactly one worker's journal
	total := 0
	for _, report := range result.Workers {
		total += report.Lines
		assert.NoError(t, report.Err)
		assert.Equal(t, 4, report.TerminatedAt)
	}
	assert.Equal(t, result.Deliveries, total)
}

func TestRunLabelReuse(t *testing.T) {
	srv := newTestCoordinator(t, 1, "alpha\n")
	plan := mustPlan(t,
		model.Action{Timestamp: 0, Label: "C1", Kind: model.ActionSpawn},
		model.Action{Timestamp: 1, Label: "C1", Kind: model.ActionTerminate},
		model.Action{Timestamp: 2, Label: "C1", Kind: model.ActionSpawn},
		model.Action{Timestamp: 3, Label: "EXIT", Kind: model.ActionHaltAll},
	)

	result, err := srv.Run(context.Background(), plan)
	require.NoError(t, err)

	require.Len(t, result.Workers, 2)
	assert.Equal(t, "C1", result.Workers[0].Label)
	assert.Equal(t, "C1", result.Workers[1].Label)
	assert.NotEqual(t, result.Workers[0].WorkerID, result.Workers[1].WorkerID)
	assert.Equal(t, 1, result.Workers[0].TerminatedAt)
	assert.Equal(t, 3, result.Workers[1].TerminatedAt)
}

func TestRunEmptyTextSource(t *testing.T) {
	srv := newTestCoordinator(t, 1, "")
	plan := mustPlan(t,
		model.Action{Timestamp: 0, Label: "C1", Kind: model.ActionSpawn},
		model.Action{Timestamp: 2, Label: "EXIT", Kind: model.ActionHaltAll},
	)

	result, err := srv.Run(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Deliveries)
	require.Len(t, result.Workers, 1)
	assert.Equal(t, 0, result.Workers[0].Lines)
}

func TestRunPublishesEvents(t *testing.T) {
	queue := memory.NewQueue[event.Event](memory.DefaultConfig())
	srv := newTestCoordinator(t, 2, "alpha\n", WithEventPublisher(event.NewPublisher(queue)))
	plan := mustPlan(t,
		model.Action{Timestamp: 0, Label: "C1", Kind: model.ActionSpawn},
		model.Action{Timestamp: 0, Label: "C2", Kind: model.ActionSpawn},
		model.Action{Timestamp: 0, Label: "C3", Kind: model.ActionSpawn},
		model.Action{Timestamp: 2, Label: "EXIT", Kind: model.ActionHaltAll},
	)

	result, err := srv.Run(context.Background(), plan)
	require.NoError(t, err)

	ctx := context.Background()
	counts := map[event.Kind]int{}
	for queue.Size() > 0 {
		msg, cErr := queue.Consume(ctx)
		require.NoError(t, cErr)
		counts[msg.T().Kind]++
		require.NoError(t, msg.Ack())
	}

	assert.Equal(t, 2, counts[event.KindSpawned])
	assert.Equal(t, 1, counts[event.KindSpawnDropped])
	assert.Equal(t, result.Deliveries, counts[event.KindDelivered])
	assert.Equal(t, 2, counts[event.KindTerminated])
	assert.Equal(t, 2, counts[event.KindReaped])
}

func TestRunRejectsBadPlan(t *testing.T) {
	srv := newTestCoordinator(t, 1, "alpha\n")
	_, err := srv.Run(context.Background(), nil)
	assert.Error(t, err)

	srv = newTestCoordinator(t, 1, "alpha\n")
	_, err = srv.Run(context.Background(), &model.Plan{Actions: []model.Action{
		{Timestamp: 0, Label: "C1", Kind: model.ActionSpawn},
	}})
	assert.ErrorIs(t, err, model.ErrMissingHalt)
}
