package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crownsync/internal/domain/catalog"
	"crownsync/internal/domain/metadata"
	"crownsync/internal/domain/remote"
)

func passWith(t *testing.T, keys ...string) *PassContext {
	t.Helper()
	objects := make([]remote.ObjectDescriptor, 0, len(keys))
	for i, k := range keys {
		objects = append(objects, remote.ObjectDescriptor{Key: k, Size: 100, LastModified: time.Unix(int64(1000+i), 0).UTC()})
	}
	pc := NewPassContext("sessions/")
	pc.Catalog = remote.Classify(objects)
	return pc
}

func TestBuildVideoViews_DisplayName(t *testing.T) {
	ref := remote.VideoRef{SessionID: 1, VideoID: 10}
	name := "Regional"

	tests := []struct {
		name    string
		sidecar *metadata.VideoSidecar
		session *metadata.SessionSidecar
		want    string
	}{
		{
			name: "comparison name wins",
			sidecar: &metadata.VideoSidecar{
				Video:   metadata.VideoInfo{ComparisonName: "Salida A"},
				Athlete: &metadata.Athlete{Nombre: "Ana", Apellido: "Pérez"},
			},
			session: &metadata.SessionSidecar{SessionName: name},
			want:    "Salida A",
		},
		{
			name:    "athlete and session",
			sidecar: &metadata.VideoSidecar{Athlete: &metadata.Athlete{Nombre: "Ana", Apellido: "Pérez"}},
			session: &metadata.SessionSidecar{SessionName: name},
			want:    "PÉREZ Ana - Regional",
		},
		{
			name:    "athlete without surname and fallback session",
			sidecar: &metadata.VideoSidecar{Athlete: &metadata.Athlete{Nombre: "Ana"}},
			want:    "Ana - Sesión 1",
		},
		{
			name:    "no athlete",
			sidecar: &metadata.VideoSidecar{},
			session: &metadata.SessionSidecar{SessionName: name},
			want:    "10.mp4",
		},
		{
			name: "no sidecar",
			want: "10.mp4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pc := passWith(t, "sessions/1/videos/10.mp4")
			if tt.sidecar != nil {
				pc.VideoSidecars[ref] = tt.sidecar
			}
			if tt.session != nil {
				pc.Sessions.Put(1, tt.session)
			}

			views := BuildVideoViews(pc, nil, nil)
			require.Len(t, views, 1)
			assert.Equal(t, tt.want, views[0].DisplayName)
		})
	}
}

func TestBuildVideoViews_LinksAndTags(t *testing.T) {
	pc := passWith(t,
		"CrownRFEP/sessions/1/videos/10.mp4",
		"sessions/1/metadata/10.json",
		"sessions/1/thumbnails/10.jpg",
		"sessions/1/videos/11.mp4",
	)
	ts := int64(100)
	pc.VideoSidecars[remote.VideoRef{SessionID: 1, VideoID: 10}] = &metadata.VideoSidecar{
		Tags: []metadata.Tag{{ID: 1, Name: "Salida"}, {ID: 4, Name: "Buena"}},
		Inputs: []metadata.Input{
			{IsEvent: true, InputTypeID: 3, TimestampMs: &ts},
			{IsEvent: true, InputTypeID: 1},
			{IsEvent: true, InputTypeID: 3},
			{IsEvent: false, InputTypeID: 4},
			{IsEvent: false, InputTypeID: 4},
			{IsEvent: false, InputTypeID: 8},
		},
	}

	clips := []catalog.VideoClip{{ID: 7, SessionID: 1, ClipPath: "sessions\\1\\videos\\10.mp4", Source: catalog.SourceRemote}}
	views := BuildVideoViews(pc, clips, nil)
	require.Len(t, views, 2)

	v := views[0]
	require.NotNil(t, v.Linked)
	assert.Equal(t, int64(7), v.Linked.ID)
	assert.Equal(t, "sessions/1/videos/10.mp4", v.Key)
	assert.Equal(t, "sessions/1/thumbnails/10.jpg", v.ThumbnailKey)
	require.NotNil(t, v.SidecarObject)
	assert.Equal(t, []EventTagCount{
		{InputTypeID: 3, Name: "Evento 3", Count: 2},
		{InputTypeID: 1, Name: "Salida", Count: 1},
	}, v.EventTags)
	assert.Equal(t, []catalog.Tag{{ID: 4, Name: "Buena"}}, v.Tags)

	assert.Nil(t, views[1].Linked)
	assert.Nil(t, views[1].SidecarObject)
}

func TestBuildSessionViews(t *testing.T) {
	pc := passWith(t,
		"sessions/1/videos/10.mp4",
		"sessions/1/videos/11.mp4",
		"sessions/2/videos/20.mp4",
		"sessions/3/videos/30.mp4",
	)
	epoch := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC).Unix()
	pc.Sessions.Put(1, &metadata.SessionSidecar{SessionID: 1, SessionName: "Regional", SessionDateUTC: &epoch, SessionDate: "2020-01-01"})
	pc.Sessions.Put(3, &metadata.SessionSidecar{SessionID: 3, SessionDate: "2023-06-10", Coach: "Marta"})

	clips := []catalog.VideoClip{{ID: 1, SessionID: 20, ClipPath: "sessions/2/videos/20.mp4"}}
	local := map[int64]catalog.Session{20: {ID: 20, Name: "Local Dos", Place: "Piscina"}}

	views := BuildVideoViews(pc, clips, local)
	sessions := BuildSessionViews(pc, views, local)
	require.Len(t, sessions, 3)

	assert.Equal(t, "Regional", sessions[0].Title)
	assert.Equal(t, 2, sessions[0].Videos)
	assert.Equal(t, time.Unix(epoch, 0).UTC(), sessions[0].Date)

	assert.Equal(t, "Local Dos", sessions[1].Title)
	assert.Equal(t, "Piscina", sessions[1].Place)
	assert.Equal(t, time.Unix(1002, 0).UTC(), sessions[1].Date)

	assert.Equal(t, "Sesión 3", sessions[2].Title)
	assert.Equal(t, "Marta", sessions[2].Coach)
	assert.Equal(t, time.Date(2023, 6, 10, 0, 0, 0, 0, time.UTC), sessions[2].Date)
}
