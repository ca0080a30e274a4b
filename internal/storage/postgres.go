// Package storage archives dispatched conversion events to PostgreSQL
// through a non-blocking buffer and a background batch-flush loop. The
// session log is authoritative; the archive is a durable copy that
// outlives session store eviction.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jonesrussell/cro-engine/internal/domain"
	"github.com/jonesrussell/cro-engine/internal/logger"
)

const (
	// columnsPerRow is the number of columns inserted per event row.
	columnsPerRow = 11

	// insertBatchSize is the maximum number of rows per INSERT statement.
	insertBatchSize = 50

	// flushTimeout is the context timeout for each flush operation.
	flushTimeout = 5 * time.Second
)

// Buffer is a channel-based event buffer for non-blocking archive
// ingestion. A full buffer drops events rather than blocking the tracker.
type Buffer struct {
	events chan domain.ConversionEvent
	closed chan struct{}
	once   sync.Once
}

// NewBuffer creates a buffer with a buffered channel of the given capacity.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{
		events: make(chan domain.ConversionEvent, capacity),
		closed: make(chan struct{}),
	}
}

// Send performs a non-blocking send of an event into the buffer.
// It returns false if the buffer channel is full.
func (b *Buffer) Send(event domain.ConversionEvent) bool {
	select {
	case b.events <- event:
		return true
	default:
		return false
	}
}

// Len returns the number of events currently in the buffer channel.
func (b *Buffer) Len() int {
	return len(b.events)
}

// Close signals the buffer to stop accepting events.
// It is safe to call multiple times.
func (b *Buffer) Close() {
	b.once.Do(func() {
		close(b.closed)
	})
}

// Archive manages buffered writes of conversion events to PostgreSQL.
type Archive struct {
	db             *sql.DB
	buffer         *Buffer
	log            logger.Logger
	flushInterval  time.Duration
	flushThreshold int
	wg             sync.WaitGroup
}

// NewArchive creates an Archive that reads events from buffer and
// batch-inserts them.
func NewArchive(
	db *sql.DB,
	buffer *Buffer,
	log logger.Logger,
	flushInterval time.Duration,
	flushThreshold int,
) *Archive {
	return &Archive{
		db:             db,
		buffer:         buffer,
		log:            log,
		flushInterval:  flushInterval,
		flushThreshold: flushThreshold,
	}
}

// Start launches the background goroutine that reads events and flushes batches.
func (a *Archive) Start() {
	a.wg.Add(1)
	go a.flushLoop()
}

// Stop signals the buffer to close and waits for the flush goroutine to finish.
func (a *Archive) Stop() {
	a.buffer.Close()
	a.wg.Wait()
}

// flushLoop accumulates a batch and flushes when the batch reaches
// flushThreshold or the flushInterval ticker fires.
func (a *Archive) flushLoop() {
	defer a.wg.Done()

	ticker := time.NewTicker(a.flushInterval)
	defer ticker.Stop()

	batch := make([]domain.ConversionEvent, 0, a.flushThreshold)

	for {
		select {
		case event := <-a.buffer.events:
			batch = append(batch, event)
			if len(batch) >= a.flushThreshold {
				a.flush(batch)
				batch = make([]domain.ConversionEvent, 0, a.flushThreshold)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				a.flush(batch)
				batch = make([]domain.ConversionEvent, 0, a.flushThreshold)
			}

		case <-a.buffer.closed:
			a.drain(&batch)
			if len(batch) > 0 {
				a.flush(batch)
			}
			return
		}
	}
}

// drain reads all remaining events from the buffer channel into the batch.
func (a *Archive) drain(batch *[]domain.ConversionEvent) {
	for {
		select {
		case event := <-a.buffer.events:
			*batch = append(*batch, event)
		default:
			return
		}
	}
}

// flush writes a batch of events to PostgreSQL in chunks of insertBatchSize.
func (a *Archive) flush(batch []domain.ConversionEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	for start := 0; start < len(batch); start += insertBatchSize {
		end := min(start+insertBatchSize, len(batch))

		if err := a.batchInsert(ctx, batch[start:end]); err != nil {
			a.log.Error("Failed to insert conversion events",
				logger.Error(err),
				logger.Int("batch_size", end-start),
			)
		}
	}

	a.log.Debug("Flushed conversion events",
		logger.Int("total", len(batch)),
	)
}

// batchInsert builds and executes a single INSERT statement with multiple
// value tuples.
func (a *Archive) batchInsert(ctx context.Context, events []domain.ConversionEvent) error {
	if len(events) == 0 {
		return nil
	}

	args := make([]any, 0, len(events)*columnsPerRow)
	var sb strings.Builder

	sb.WriteString("INSERT INTO conversion_events (event_id, session_id, event_name, " +
		"event_category, event_label, value, lead_score, attribution, " +
		"custom_parameters, experiment_assignments, occurred_at) VALUES ")

	for i := range events {
		if i > 0 {
			sb.WriteString(", ")
		}

		writeValueTuple(&sb, i)

		ev := &events[i]
		args = append(args,
			ev.EventID, ev.SessionID, ev.EventName,
			ev.EventCategory, ev.EventLabel, ev.Value, ev.LeadScore,
			attributionColumn(ev.Attribution), mapColumn(ev.CustomParams),
			mapColumn(ev.Assignments), ev.Timestamp,
		)
	}

	_, err := a.db.ExecContext(ctx, sb.String(), args...)
	if err != nil {
		return fmt.Errorf("exec batch insert: %w", err)
	}

	return nil
}

// attributionColumn serializes attribution for a JSONB column, or NULL
// when absent.
func attributionColumn(a *domain.Attribution) any {
	if a == nil {
		return nil
	}
	return jsonColumn(*a)
}

// mapColumn serializes a string map for a JSONB column, or NULL when empty.
func mapColumn(m map[string]string) any {
	if len(m) == 0 {
		return nil
	}
	return jsonColumn(m)
}

// jsonColumn serializes v, or NULL when v is unencodable.
func jsonColumn(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}

// writeValueTuple writes a single ($1, ..., $11) placeholder tuple to the
// builder, offset by the row index.
func writeValueTuple(sb *strings.Builder, rowIndex int) {
	base := rowIndex * columnsPerRow
	sb.WriteByte('(')
	for col := 1; col <= columnsPerRow; col++ {
		if col > 1 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(sb, "$%d", base+col)
	}
	sb.WriteByte(')')
}
