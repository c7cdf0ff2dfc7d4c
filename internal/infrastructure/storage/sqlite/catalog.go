package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"crownsync/internal/domain/catalog"
)

const clipColumns = `id, session_id, athlete_id, comparison_name, section, clip_duration, clip_size,
	creation_date, clip_path, thumbnail_path, local_thumbnail_path, source, last_sync_utc`

func scanClip(row interface{ Scan(...any) error }) (catalog.VideoClip, error) {
	var c catalog.VideoClip
	err := row.Scan(&c.ID, &c.SessionID, &c.AthleteID, &c.ComparisonName, &c.Section, &c.ClipDuration,
		&c.ClipSize, &c.CreationDate, &c.ClipPath, &c.ThumbnailPath, &c.LocalThumbnailPath, &c.Source,
		&c.LastSyncUTC)
	return c, err
}

func (s *Storage) GetAllVideoClips(ctx context.Context) ([]catalog.VideoClip, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+clipColumns+` FROM video_clips ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения видео: %w", err)
	}
	defer rows.Close()

	var clips []catalog.VideoClip
	for rows.Next() {
		c, err := scanClip(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования видео: %w", err)
		}
		clips = append(clips, c)
	}
	return clips, rows.Err()
}

func (s *Storage) InsertVideoClip(ctx context.Context, c catalog.VideoClip) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO video_clips (session_id, athlete_id, comparison_name, section, clip_duration, clip_size,
		                         creation_date, clip_path, thumbnail_path, local_thumbnail_path, source, last_sync_utc)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.SessionID, c.AthleteID, c.ComparisonName, c.Section, c.ClipDuration, c.ClipSize,
		c.CreationDate, c.ClipPath, c.ThumbnailPath, c.LocalThumbnailPath, c.Source, c.LastSyncUTC)
	if err != nil {
		return 0, fmt.Errorf("ошибка сохранения видео: %w", err)
	}
	return res.LastInsertId()
}

func (s *Storage) UpdateVideoClip(ctx context.Context, c catalog.VideoClip) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE video_clips
		SET session_id = ?, athlete_id = ?, comparison_name = ?, section = ?, clip_duration = ?, clip_size = ?,
		    creation_date = ?, clip_path = ?, thumbnail_path = ?, local_thumbnail_path = ?, source = ?,
		    last_sync_utc = ?
		WHERE id = ?
	`, c.SessionID, c.AthleteID, c.ComparisonName, c.Section, c.ClipDuration, c.ClipSize,
		c.CreationDate, c.ClipPath, c.ThumbnailPath, c.LocalThumbnailPath, c.Source, c.LastSyncUTC, c.ID)
	if err != nil {
		return fmt.Errorf("ошибка обновления видео: %w", err)
	}
	return expectRow(res, "video clip", c.ID)
}

func (s *Storage) DeleteVideoClip(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM event_inputs WHERE video_id = ?`,
		`DELETE FROM timing_events WHERE video_id = ?`,
		`DELETE FROM video_clips WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("ошибка удаления видео: %w", err)
		}
	}
	return tx.Commit()
}

func (s *Storage) CountVideoClipsBySession(ctx context.Context, sessionID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM video_clips WHERE session_id = ?`, sessionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчета видео: %w", err)
	}
	return n, nil
}

func (s *Storage) GetSessionByID(ctx context.Context, id int64) (catalog.Session, error) {
	var (
		sess catalog.Session
		date int64
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, name, place, coach, type, date FROM sessions WHERE id = ?`, id).
		Scan(&sess.ID, &sess.Name, &sess.Place, &sess.Coach, &sess.Type, &date)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Session{}, fmt.Errorf("session %d: %w", id, catalog.ErrNotFound)
	}
	if err != nil {
		return catalog.Session{}, fmt.Errorf("ошибка получения сессии: %w", err)
	}
	sess.Date = fromUnix(date)
	return sess, nil
}

func (s *Storage) GetAllSessions(ctx context.Context) ([]catalog.Session, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, place, coach, type, date FROM sessions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения сессий: %w", err)
	}
	defer rows.Close()

	var sessions []catalog.Session
	for rows.Next() {
		var (
			sess catalog.Session
			date int64
		)
		if err := rows.Scan(&sess.ID, &sess.Name, &sess.Place, &sess.Coach, &sess.Type, &date); err != nil {
			return nil, fmt.Errorf("ошибка сканирования сессии: %w", err)
		}
		sess.Date = fromUnix(date)
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func (s *Storage) InsertSessionWithID(ctx context.Context, sess catalog.Session) error {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM sessions WHERE id = ?)`, sess.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("ошибка проверки существования сессии: %w", err)
	}
	if exists {
		return fmt.Errorf("session %d: %w", sess.ID, catalog.ErrAlreadyExists)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, name, place, coach, type, date) VALUES (?, ?, ?, ?, ?, ?)
	`, sess.ID, sess.Name, sess.Place, sess.Coach, sess.Type, toUnix(sess.Date))
	if err != nil {
		return fmt.Errorf("ошибка сохранения сессии: %w", err)
	}
	return nil
}

func (s *Storage) SaveSession(ctx context.Context, sess catalog.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, name, place, coach, type, date) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, place = excluded.place, coach = excluded.coach,
		                              type = excluded.type, date = excluded.date
	`, sess.ID, sess.Name, sess.Place, sess.Coach, sess.Type, toUnix(sess.Date))
	if err != nil {
		return fmt.Errorf("ошибка обновления сессии: %w", err)
	}
	return nil
}

func (s *Storage) DeleteSession(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("ошибка удаления сессии: %w", err)
	}
	return nil
}

func (s *Storage) SaveAthlete(ctx context.Context, a catalog.Athlete) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO athletes (id, name, surname, category, category_id, favorite) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, surname = excluded.surname,
		                              category = excluded.category, category_id = excluded.category_id,
		                              favorite = excluded.favorite
	`, a.ID, a.Name, a.Surname, a.Category, a.CategoryID, a.Favorite)
	if err != nil {
		return fmt.Errorf("ошибка сохранения спортсмена: %w", err)
	}
	return nil
}

func (s *Storage) SaveTag(ctx context.Context, t catalog.Tag) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tags (id, name) VALUES (?, ?) ON CONFLICT(id) DO UPDATE SET name = excluded.name
	`, t.ID, t.Name)
	if err != nil {
		return fmt.Errorf("ошибка сохранения тега: %w", err)
	}
	return nil
}

func (s *Storage) InsertEventTag(ctx context.Context, t catalog.EventTag) error {
	res, err := s.db.ExecContext(ctx, `INSERT INTO event_tags (id, name) VALUES (?, ?) ON CONFLICT(id) DO NOTHING`, t.ID, t.Name)
	if err != nil {
		return fmt.Errorf("ошибка сохранения тега события: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("event tag %d: %w", t.ID, catalog.ErrAlreadyExists)
	}
	return nil
}

func (s *Storage) GetEventTagByID(ctx context.Context, id int64) (catalog.EventTag, error) {
	var t catalog.EventTag
	err := s.db.QueryRowContext(ctx, `SELECT id, name FROM event_tags WHERE id = ?`, id).Scan(&t.ID, &t.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return t, fmt.Errorf("event tag %d: %w", id, catalog.ErrNotFound)
	}
	if err != nil {
		return t, fmt.Errorf("ошибка получения тега события: %w", err)
	}
	return t, nil
}

func (s *Storage) SaveEventInput(ctx context.Context, in catalog.EventInput) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO event_inputs (video_id, session_id, input_type_id, is_event, value, timestamp_ms)
		VALUES (?, ?, ?, ?, ?, ?)
	`, in.VideoID, in.SessionID, in.InputTypeID, in.IsEvent, in.Value, in.TimestampMs)
	if err != nil {
		return fmt.Errorf("ошибка сохранения отметки: %w", err)
	}
	return nil
}

func (s *Storage) ListEventInputs(ctx context.Context, videoID int64) ([]catalog.EventInput, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, video_id, session_id, input_type_id, is_event, value, timestamp_ms
		FROM event_inputs WHERE video_id = ? ORDER BY id
	`, videoID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения отметок: %w", err)
	}
	defer rows.Close()

	var inputs []catalog.EventInput
	for rows.Next() {
		var in catalog.EventInput
		if err := rows.Scan(&in.ID, &in.VideoID, &in.SessionID, &in.InputTypeID, &in.IsEvent, &in.Value, &in.TimestampMs); err != nil {
			return nil, fmt.Errorf("ошибка сканирования отметки: %w", err)
		}
		inputs = append(inputs, in)
	}
	return inputs, rows.Err()
}

func (s *Storage) DeleteEventInputsByVideo(ctx context.Context, videoID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM event_inputs WHERE video_id = ?`, videoID); err != nil {
		return fmt.Errorf("ошибка удаления отметок: %w", err)
	}
	return nil
}

func (s *Storage) InsertTimingEvents(ctx context.Context, events []catalog.TimingEvent) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO timing_events (video_id, type, timestamp_ms, payload) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("ошибка подготовки запроса: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err := stmt.ExecContext(ctx, e.VideoID, e.Type, e.TimestampMs, e.Payload); err != nil {
			return fmt.Errorf("ошибка сохранения события: %w", err)
		}
	}
	return tx.Commit()
}

func (s *Storage) ListTimingEvents(ctx context.Context, videoID int64) ([]catalog.TimingEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, video_id, type, timestamp_ms, payload FROM timing_events WHERE video_id = ? ORDER BY id
	`, videoID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения событий: %w", err)
	}
	defer rows.Close()

	var events []catalog.TimingEvent
	for rows.Next() {
		var e catalog.TimingEvent
		if err := rows.Scan(&e.ID, &e.VideoID, &e.Type, &e.TimestampMs, &e.Payload); err != nil {
			return nil, fmt.Errorf("ошибка сканирования события: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *Storage) DeleteTimingEventsByVideo(ctx context.Context, videoID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM timing_events WHERE video_id = ?`, videoID); err != nil {
		return fmt.Errorf("ошибка удаления событий: %w", err)
	}
	return nil
}

func expectRow(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", what, id, catalog.ErrNotFound)
	}
	return nil
}

func toUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func fromUnix(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

var _ catalog.Repository = (*Storage)(nil)
