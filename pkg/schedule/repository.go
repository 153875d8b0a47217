package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// Repository is the owner-scoped event store. Every method takes the owning
// user id explicitly; rows belonging to other users are invisible.
type Repository interface {
	StoreEvents(ctx context.Context, userId int, drafts []EventDraft) ([]Event, error)
	GetEventsStartingBetween(ctx context.Context, userId int, from, to time.Time) ([]Event, error)
	GetEvent(ctx context.Context, userId int, uid uuid.UUID) (Event, error)
	UpdateEvent(ctx context.Context, userId int, event Event) error
	DeleteEvent(ctx context.Context, userId int, uid uuid.UUID) error
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

// StoreEvents inserts all drafts in a single transaction. Either every event
// is persisted or none is.
func (r *RepositoryImpl) StoreEvents(ctx context.Context, userId int, drafts []EventDraft) ([]Event, error) {
	if len(drafts) == 0 {
		return nil, nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		log.Errorf("could not begin transaction: %v", err)
		return nil, fmt.Errorf("%w: begin transaction: %v", ErrStoreUnavailable, err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	query := `INSERT INTO schedule_event (uid, user_id, title, start_time, end_time, memo, source)
              VALUES ($1, $2, $3, $4, $5, $6, $7)`

	events := make([]Event, 0, len(drafts))
	for _, draft := range drafts {
		uid := uuid.New()
		_, err = tx.Exec(ctx, query,
			uid.String(),
			userId,
			draft.Title,
			draft.StartTime.UnixMilli(),
			draft.EndTime.UnixMilli(),
			draft.Memo,
			string(draft.Source),
		)
		if err != nil {
			log.Errorf("could not insert event: %v", err)
			return nil, fmt.Errorf("%w: insert event: %v", ErrStoreUnavailable, err)
		}
		events = append(events, Event{
			UID:       uid,
			Title:     draft.Title,
			StartTime: draft.StartTime,
			EndTime:   draft.EndTime,
			Memo:      draft.Memo,
			Source:    draft.Source,
		})
	}

	if err := tx.Commit(ctx); err != nil {
		log.Errorf("could not commit transaction: %v", err)
		return nil, fmt.Errorf("%w: commit transaction: %v", ErrStoreUnavailable, err)
	}
	return events, nil
}

// GetEventsStartingBetween returns the user's events whose start instant lies
// in [from, to], ordered by start instant ascending.
func (r *RepositoryImpl) GetEventsStartingBetween(ctx context.Context, userId int, from, to time.Time) ([]Event, error) {
	query := `SELECT uid, title, start_time, end_time, memo, source
              FROM schedule_event
              WHERE user_id = $1
                AND start_time >= $2
                AND start_time <= $3
              ORDER BY start_time`

	rows, err := r.db.Query(ctx, query, userId, from.UnixMilli(), to.UnixMilli())
	if err != nil {
		log.Errorf("could not query schedule events: %v", err)
		return nil, fmt.Errorf("%w: query events: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	events := make([]Event, 0, 10)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read rows: %v", ErrStoreUnavailable, err)
	}
	return events, nil
}

func (r *RepositoryImpl) GetEvent(ctx context.Context, userId int, uid uuid.UUID) (Event, error) {
	query := `SELECT uid, title, start_time, end_time, memo, source
              FROM schedule_event
              WHERE uid = $1 AND user_id = $2`

	row := r.db.QueryRow(ctx, query, uid.String(), userId)
	event, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Event{}, ErrEventNotFound
	} else if err != nil {
		return Event{}, err
	}
	return event, nil
}

func (r *RepositoryImpl) UpdateEvent(ctx context.Context, userId int, event Event) error {
	query := `UPDATE schedule_event SET title = $1, start_time = $2, end_time = $3, memo = $4
              WHERE uid = $5 AND user_id = $6`

	tag, err := r.db.Exec(ctx, query,
		event.Title,
		event.StartTime.UnixMilli(),
		event.EndTime.UnixMilli(),
		event.Memo,
		event.UID.String(),
		userId,
	)
	if err != nil {
		log.Errorf("could not update event: %v", err)
		return fmt.Errorf("%w: update event: %v", ErrStoreUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *RepositoryImpl) DeleteEvent(ctx context.Context, userId int, uid uuid.UUID) error {
	query := `DELETE FROM schedule_event WHERE uid = $1 AND user_id = $2`

	tag, err := r.db.Exec(ctx, query, uid.String(), userId)
	if err != nil {
		log.Errorf("could not delete event: %v", err)
		return fmt.Errorf("%w: delete event: %v", ErrStoreUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

func scanEvent(row pgx.Row) (Event, error) {
	var uidString string
	var title string
	var startMillis int64
	var endMillis int64
	var memo string
	var source string
	if err := row.Scan(&uidString, &title, &startMillis, &endMillis, &memo, &source); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Event{}, err
		}
		log.Errorf("could not scan event row: %v", err)
		return Event{}, fmt.Errorf("%w: scan row: %v", ErrStoreUnavailable, err)
	}
	uid, err := uuid.Parse(uidString)
	if err != nil {
		return Event{}, fmt.Errorf("%w: corrupt event uid %q: %v", ErrStoreUnavailable, uidString, err)
	}
	return Event{
		UID:       uid,
		Title:     title,
		StartTime: time.UnixMilli(startMillis).UTC(),
		EndTime:   time.UnixMilli(endMillis).UTC(),
		Memo:      memo,
		Source:    Source(source),
	}, nil
}
