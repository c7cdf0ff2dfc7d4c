package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crownsync/internal/domain/catalog"
	"crownsync/internal/domain/remote"
)

const videoSidecar = `{
	"video": {"clipDuration": 31.5, "clipSize": 4096, "section": 1},
	"athlete": {"id": 7, "nombre": "Ana", "apellido": "Pérez"},
	"tags": [{"id": 1, "name": "Salida"}, {"id": 4, "name": "Buena"}],
	"inputs": [
		{"isEvent": 1, "inputTypeId": 1, "timestampMs": 1200},
		{"isEvent": 1, "inputTypeId": 1, "timestampMs": 5400},
		{"isEvent": 0, "inputTypeId": 4, "inputValue": "ok"}
	],
	"timingEvents": [{"eventType": "lap", "timestampMs": 3000}]
}`

func TestEngine_Run_ImportsNewSession(t *testing.T) {
	f := newTestFixture(t, nil)
	f.remote.put("sessions/1/session.json", `{"sessionId": 1, "sessionName": "Regional", "place": "Río Norte", "sessionDate": "2024-05-01"}`, 1000)
	f.remote.put("sessions/1/videos/10.mp4", "video-bytes", 1100)
	f.remote.put("sessions/1/metadata/10.json", videoSidecar, 1200)

	report, err := f.engine.Run(context.Background(), "sessions/")
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, report.State)
	assert.Equal(t, 1, report.Imported)
	assert.Equal(t, 1, report.SessionsCreated)
	assert.Equal(t, 0, report.Failed)

	session, err := f.repo.GetSessionByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Regional", session.Name)
	assert.Equal(t, "Río Norte", session.Place)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), session.Date)

	clips := f.clips(t)
	require.Len(t, clips, 1)
	clip := clips[0]
	assert.Equal(t, int64(1), clip.SessionID)
	assert.Equal(t, "sessions/1/videos/10.mp4", clip.ClipPath)
	assert.Equal(t, catalog.SourceRemote, clip.Source)
	assert.Equal(t, int64(1200), clip.LastSyncUTC)
	assert.Equal(t, "PÉREZ Ana - Regional", clip.ComparisonName)
	assert.Equal(t, int64(7), clip.AthleteID)
	assert.Equal(t, int64(4096), clip.ClipSize)
	assert.InDelta(t, 31.5, clip.ClipDuration, 0.001)

	inputs, err := f.repo.ListEventInputs(context.Background(), clip.ID)
	require.NoError(t, err)
	assert.Len(t, inputs, 3)
	events, err := f.repo.ListTimingEvents(context.Background(), clip.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "lap", events[0].Type)

	tag, err := f.repo.GetEventTagByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Salida", tag.Name)

	athlete, ok := f.repo.Athlete(7)
	require.True(t, ok)
	assert.Equal(t, "Pérez", athlete.Surname)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Passes.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Items.WithLabelValues("imported")))
}

func TestEngine_Run_Idempotent(t *testing.T) {
	f := newTestFixture(t, nil)
	f.remote.put("sessions/1/session.json", `{"sessionId": 1, "sessionName": "Regional", "sessionDateUtc": 1714557600}`, 1000)
	f.remote.put("sessions/1/videos/10.mp4", "a", 1100)
	f.remote.put("sessions/1/metadata/10.json", videoSidecar, 1200)
	f.remote.put("sessions/1/videos/11.mp4", "b", 1100)
	f.remote.put("sessions/2/videos/20.mp4", "c", 1300)

	first, err := f.engine.Run(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 3, first.Imported)

	second, err := f.engine.Run(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 0, second.Imported)
	assert.Equal(t, 0, second.Updated)
	assert.Equal(t, 0, second.Orphaned)
	assert.Equal(t, 0, second.SessionsCreated)
	assert.Equal(t, 0, second.SessionsUpdated)
	assert.False(t, second.Changed())
	assert.Len(t, f.clips(t), 3)
}

func TestEngine_Run_RemovesOrphans(t *testing.T) {
	ctx := context.Background()
	f := newTestFixture(t, nil)

	require.NoError(t, f.repo.InsertSessionWithID(ctx, catalog.Session{ID: 42, Name: "Sesión 42"}))
	_, err := f.repo.InsertVideoClip(ctx, catalog.VideoClip{
		SessionID:          42,
		ClipPath:           "sessions/42/videos/7.mp4",
		LocalThumbnailPath: "thumbnails/42/7.jpg",
		Source:             catalog.SourceRemote,
	})
	require.NoError(t, err)

	require.NoError(t, f.repo.InsertSessionWithID(ctx, catalog.Session{ID: 3, Name: "Local"}))
	_, err = f.repo.InsertVideoClip(ctx, catalog.VideoClip{SessionID: 3, ClipPath: "sessions/3/videos/1.mp4"})
	require.NoError(t, err)

	f.remote.put("sessions/1/videos/10.mp4", "a", 1100)

	report, err := f.engine.Run(ctx, "sessions/")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Orphaned)
	assert.Equal(t, 1, report.SessionsRemoved)
	assert.Equal(t, 1, report.Imported)

	_, err = f.repo.GetSessionByID(ctx, 42)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	_, err = f.repo.GetSessionByID(ctx, 3)
	assert.NoError(t, err)
	assert.Equal(t, []string{"thumbnails/42/7.jpg"}, f.thumbs.removed)

	for _, c := range f.clips(t) {
		assert.NotEqual(t, "sessions/42/videos/7.mp4", c.ClipPath)
	}
}

func TestEngine_Run_OrphanScopeAndRootPrefix(t *testing.T) {
	ctx := context.Background()
	f := newTestFixture(t, nil)

	require.NoError(t, f.repo.InsertSessionWithID(ctx, catalog.Session{ID: 1, Name: "Uno"}))
	require.NoError(t, f.repo.InsertSessionWithID(ctx, catalog.Session{ID: 2, Name: "Dos"}))
	_, err := f.repo.InsertVideoClip(ctx, catalog.VideoClip{SessionID: 1, ClipPath: "CrownRFEP/sessions/1/videos/10.mp4", Source: catalog.SourceRemote})
	require.NoError(t, err)
	_, err = f.repo.InsertVideoClip(ctx, catalog.VideoClip{SessionID: 2, ClipPath: "sessions/2/videos/20.mp4", Source: catalog.SourceRemote})
	require.NoError(t, err)

	f.remote.put("sessions/1/videos/10.mp4", "a", 1100)

	report, err := f.engine.Run(ctx, "sessions/1/")
	require.NoError(t, err)
	assert.Equal(t, 0, report.Orphaned)
	assert.Equal(t, 0, report.Imported)
	assert.Len(t, f.clips(t), 2)
}

func TestEngine_Run_RefreshesOnlyNewerSidecars(t *testing.T) {
	ctx := context.Background()
	f := newTestFixture(t, nil)

	require.NoError(t, f.repo.InsertSessionWithID(ctx, catalog.Session{ID: 1, Name: "Regional"}))
	id, err := f.repo.InsertVideoClip(ctx, catalog.VideoClip{
		SessionID:      1,
		ClipPath:       "sessions/1/videos/10.mp4",
		Source:         catalog.SourceRemote,
		ComparisonName: "old",
		LastSyncUTC:    1000,
	})
	require.NoError(t, err)
	require.NoError(t, f.repo.SaveEventInput(ctx, catalog.EventInput{VideoID: id, InputTypeID: 9, IsEvent: true}))

	f.remote.put("sessions/1/videos/10.mp4", "a", 800)
	f.remote.put("sessions/1/metadata/10.json", `{"video": {"comparisonName": "Salida A"}, "inputs": [{"isEvent": 1, "inputTypeId": 2}]}`, 900)

	report, err := f.engine.Run(ctx, "sessions/")
	require.NoError(t, err)
	assert.Equal(t, 0, report.Updated)

	clip := f.clips(t)[0]
	assert.Equal(t, int64(1000), clip.LastSyncUTC)
	assert.Equal(t, "old", clip.ComparisonName)
	inputs, _ := f.repo.ListEventInputs(ctx, id)
	require.Len(t, inputs, 1)
	assert.Equal(t, int64(9), inputs[0].InputTypeID)

	f.remote.put("sessions/1/metadata/10.json", `{"video": {"comparisonName": "Salida A"}, "inputs": [{"isEvent": 1, "inputTypeId": 2}]}`, 1500)

	report, err = f.engine.Run(ctx, "sessions/")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)

	clip = f.clips(t)[0]
	assert.Equal(t, int64(1500), clip.LastSyncUTC)
	assert.Equal(t, "Salida A", clip.ComparisonName)
	inputs, _ = f.repo.ListEventInputs(ctx, id)
	require.Len(t, inputs, 1)
	assert.Equal(t, int64(2), inputs[0].InputTypeID)
	_, err = f.repo.GetEventTagByID(ctx, 2)
	assert.NoError(t, err)
}

func TestEngine_Run_WatermarkSecondGranularity(t *testing.T) {
	ctx := context.Background()
	f := newTestFixture(t, nil)

	f.remote.put("sessions/1/videos/10.mp4", "a", 800)
	f.remote.putAt("sessions/1/metadata/10.json", `{"video": {"comparisonName": "Salida A"}}`, time.Unix(1000, 100*int64(time.Millisecond)))

	report, err := f.engine.Run(ctx, "sessions/")
	require.NoError(t, err)
	require.Equal(t, 1, report.Imported)
	assert.Equal(t, int64(1000), f.clips(t)[0].LastSyncUTC)

	// перезапись в ту же секунду не считается более новой
	f.remote.putAt("sessions/1/metadata/10.json", `{"video": {"comparisonName": "Salida B"}}`, time.Unix(1000, 900*int64(time.Millisecond)))
	report, err = f.engine.Run(ctx, "sessions/")
	require.NoError(t, err)
	assert.Equal(t, 0, report.Updated)
	assert.Equal(t, "Salida A", f.clips(t)[0].ComparisonName)

	f.remote.put("sessions/1/metadata/10.json", `{"video": {"comparisonName": "Salida B"}}`, 1001)
	report, err = f.engine.Run(ctx, "sessions/")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, int64(1001), f.clips(t)[0].LastSyncUTC)
	assert.Equal(t, "Salida B", f.clips(t)[0].ComparisonName)
}

func TestEngine_Run_DedupesSessionOnImport(t *testing.T) {
	ctx := context.Background()
	f := newTestFixture(t, nil)

	require.NoError(t, f.repo.InsertSessionWithID(ctx, catalog.Session{
		ID:    5,
		Name:  "Entreno Tarde",
		Place: "Río Norte",
		Date:  time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}))

	afternoon := time.Date(2024, 5, 1, 17, 30, 0, 0, time.UTC).Unix()
	f.remote.put("sessions/99/session.json", `{"sessionId": 99, "sessionName": "entreno tarde ", "place": "RÍO NORTE", "sessionDateUtc": `+itoa(afternoon)+`}`, 1000)
	f.remote.put("sessions/99/videos/1.mp4", "a", 1100)

	report, err := f.engine.Run(ctx, "sessions/")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Imported)
	assert.Equal(t, 0, report.SessionsCreated)

	clips := f.clips(t)
	require.Len(t, clips, 1)
	assert.Equal(t, int64(5), clips[0].SessionID)
	_, err = f.repo.GetSessionByID(ctx, 99)
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	second, err := f.engine.Run(ctx, "sessions/")
	require.NoError(t, err)
	assert.Equal(t, 0, second.Imported)
	assert.Equal(t, 0, second.SessionsUpdated)
	assert.Len(t, f.clips(t), 1)
}

func TestEngine_Run_PlaceMismatchCreatesRemoteSession(t *testing.T) {
	ctx := context.Background()
	f := newTestFixture(t, nil)

	require.NoError(t, f.repo.InsertSessionWithID(ctx, catalog.Session{
		ID:   6,
		Name: "Entreno Tarde",
		Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}))

	f.remote.put("sessions/99/session.json", `{"sessionId": 99, "sessionName": "Entreno Tarde", "place": "Río Norte", "sessionDate": "2024-05-01"}`, 1000)
	f.remote.put("sessions/99/videos/1.mp4", "a", 1100)

	report, err := f.engine.Run(ctx, "sessions/")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Imported)
	assert.Equal(t, 1, report.SessionsCreated)

	clips := f.clips(t)
	require.Len(t, clips, 1)
	assert.Equal(t, int64(99), clips[0].SessionID)

	created, err := f.repo.GetSessionByID(ctx, 99)
	require.NoError(t, err)
	assert.Equal(t, "Río Norte", created.Place)
}

func TestEngine_Run_PushesSessionFields(t *testing.T) {
	ctx := context.Background()
	f := newTestFixture(t, nil)

	require.NoError(t, f.repo.InsertSessionWithID(ctx, catalog.Session{ID: 1, Name: "Viejo", Place: "Piscina", Coach: "Luis"}))
	_, err := f.repo.InsertVideoClip(ctx, catalog.VideoClip{SessionID: 1, ClipPath: "sessions/1/videos/10.mp4", Source: catalog.SourceRemote})
	require.NoError(t, err)

	f.remote.put("sessions/1/session.json", `{"sessionId": 1, "sessionName": "Nuevo", "coach": "Marta", "place": ""}`, 1000)
	f.remote.put("sessions/1/videos/10.mp4", "a", 1100)

	report, err := f.engine.Run(ctx, "sessions/")
	require.NoError(t, err)
	assert.Equal(t, 1, report.SessionsUpdated)

	s, err := f.repo.GetSessionByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Nuevo", s.Name)
	assert.Equal(t, "Marta", s.Coach)
	assert.Equal(t, "Piscina", s.Place)
}

func TestEngine_Run_MalformedSidecar(t *testing.T) {
	f := newTestFixture(t, nil)
	f.remote.put("sessions/1/videos/10.mp4", "a", 1100)
	f.remote.put("sessions/1/metadata/10.json", `{"video": `, 1200)
	f.remote.put("sessions/1/bogus.txt", "x", 1200)

	report, err := f.engine.Run(context.Background(), "sessions/")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Imported)
	assert.Equal(t, 1, report.Skipped)

	clip := f.clips(t)[0]
	assert.Equal(t, "10.mp4", clip.ComparisonName)
	assert.Equal(t, int64(0), clip.LastSyncUTC)

	s, err := f.repo.GetSessionByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Sesión 1", s.Name)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.SidecarsMissing))
}

func TestEngine_Run_NotAuthenticated(t *testing.T) {
	f := newTestFixture(t, authFunc(func() bool { return false }))
	f.remote.put("sessions/1/videos/10.mp4", "a", 1100)

	report, err := f.engine.Run(context.Background(), "sessions/")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	require.NotNil(t, report)
	assert.Equal(t, StateNotAuthenticated, report.State)
	assert.Equal(t, 0, f.remote.listCalls)
	assert.Empty(t, f.clips(t))
}

func TestEngine_Run_ListingFailureAborts(t *testing.T) {
	f := newTestFixture(t, nil)
	f.remote.listErr = errors.New("connection reset")

	report, err := f.engine.Run(context.Background(), "sessions/")
	assert.ErrorIs(t, err, remote.ErrTransport)
	assert.Equal(t, StateAborted, report.State)
	assert.Equal(t, 0, report.Imported)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Passes.WithLabelValues("aborted")))
}

func TestEngine_Run_Cancelled(t *testing.T) {
	f := newTestFixture(t, nil)
	f.remote.put("sessions/1/videos/10.mp4", "a", 1100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := f.engine.Run(ctx, "sessions/")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateCancelled, report.State)
	assert.Empty(t, f.clips(t))
}

// blockingStore задерживает листинг, пока не закрыт release
type blockingStore struct {
	*fakeRemote
	entered chan struct{}
	release chan struct{}
}

func (b *blockingStore) ListFiles(ctx context.Context, prefix, marker string, maxItems int) (*remote.ListPage, error) {
	close(b.entered)
	<-b.release
	return b.fakeRemote.ListFiles(ctx, prefix, marker, maxItems)
}

func TestEngine_Run_RejectsConcurrentPass(t *testing.T) {
	f := newTestFixture(t, nil)
	store := &blockingStore{fakeRemote: f.remote, entered: make(chan struct{}), release: make(chan struct{})}
	engine := NewEngine(Deps{Store: store, Repo: f.repo, Loader: f.engine.loader}, Config{}, f.engine.log)

	done := make(chan error, 1)
	go func() {
		_, err := engine.Run(context.Background(), "sessions/")
		done <- err
	}()

	<-store.entered
	_, err := engine.Run(context.Background(), "sessions/")
	assert.ErrorIs(t, err, ErrPassInProgress)

	close(store.release)
	require.NoError(t, <-done)
}
