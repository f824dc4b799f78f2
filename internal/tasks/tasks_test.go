package tasks

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"
	"testing"

	"github.com/desertthunder/plcopy/internal/models"
	"github.com/desertthunder/plcopy/internal/shared"
)

type createCall struct {
	Meta    models.PlaylistMetadata
	Private bool
}

type appendCall struct {
	PlaylistID string
	VideoID    string
}

type fakeService struct {
	playlists map[string]*models.PlaylistMetadata
	items     map[string][]string

	metadataErr error
	createErr   error
	listErr     error
	deleteErr   error
	failAppend  int // 1-based call index that fails, 0 never

	created  int
	creates  []createCall
	appends  []appendCall
	deleted  []string
	metaHits int
	listHits int
}

func newFakeService() *fakeService {
	return &fakeService{
		playlists: map[string]*models.PlaylistMetadata{},
		items:     map[string][]string{},
	}
}

func (f *fakeService) GetMetadata(ctx context.Context, id string) (*models.PlaylistMetadata, error) {
	f.metaHits++
	if f.metadataErr != nil {
		return nil, f.metadataErr
	}
	meta, ok := f.playlists[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}
	return meta, nil
}

func (f *fakeService) Pages(ctx context.Context, id string) iter.Seq2[[]string, error] {
	return func(yield func([]string, error) bool) {
		if f.listErr != nil {
			yield(nil, f.listErr)
			return
		}
		yield(slices.Clone(f.items[id]), nil)
	}
}

func (f *fakeService) VideoIDs(ctx context.Context, id string, order models.Order) ([]string, error) {
	f.listHits++
	var ids []string
	for page, err := range f.Pages(ctx, id) {
		if err != nil {
			return nil, err
		}
		ids = append(ids, page...)
	}
	if order == models.Descending {
		slices.Reverse(ids)
	}
	return ids, nil
}

func (f *fakeService) CreatePlaylist(ctx context.Context, meta *models.PlaylistMetadata, private bool) (string, error) {
	f.creates = append(f.creates, createCall{Meta: *meta, Private: private})
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created++
	id := fmt.Sprintf("PLnew%d", f.created)
	f.playlists[id] = meta
	return id, nil
}

func (f *fakeService) AppendVideo(ctx context.Context, playlistID, videoID string) (*models.InsertResult, error) {
	f.appends = append(f.appends, appendCall{PlaylistID: playlistID, VideoID: videoID})
	if f.failAppend > 0 && len(f.appends) == f.failAppend {
		return nil, &shared.APIError{Op: "playlistItems.insert", Status: 403, Message: "forbidden"}
	}
	pos := int64(len(f.items[playlistID]))
	f.items[playlistID] = append(f.items[playlistID], videoID)
	return &models.InsertResult{ItemID: "item-" + videoID, PlaylistID: playlistID, VideoID: videoID, Position: pos}, nil
}

func (f *fakeService) DeletePlaylist(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

func (f *fakeService) appendedVideos() []string {
	ids := make([]string, len(f.appends))
	for i, call := range f.appends {
		ids[i] = call.VideoID
	}
	return ids
}

type fakeRecorder struct {
	runs      []*models.CopyRun
	updates   int
	createErr error
	updateErr error
}

func (r *fakeRecorder) Create(run *models.CopyRun) error {
	if r.createErr != nil {
		return r.createErr
	}
	run.SetID(fmt.Sprintf("run-%d", len(r.runs)+1))
	run.SetSequence(len(r.runs) + 1)
	r.runs = append(r.runs, run)
	return nil
}

func (r *fakeRecorder) Update(run *models.CopyRun) error {
	r.updates++
	return r.updateErr
}

func myMix() *fakeService {
	svc := newFakeService()
	svc.playlists["XXX"] = &models.PlaylistMetadata{Title: "My Mix", Description: "desc", Thumbnails: map[string]models.Thumbnail{}}
	svc.items["XXX"] = []string{"a1", "a2", "a3"}
	return svc
}

func drain(ch chan ProgressUpdate) []ProgressUpdate {
	var updates []ProgressUpdate
	for {
		select {
		case u := <-ch:
			updates = append(updates, u)
		default:
			return updates
		}
	}
}

func TestCopyEngine_Copy(t *testing.T) {
	t.Run("descending copy inserts in reverse with one call per item", func(t *testing.T) {
		svc := myMix()
		engine := NewCopyEngine(svc, nil)

		result, err := engine.Copy(context.Background(), "XXX", CopyOptions{Order: models.Descending}, nil)
		if err != nil {
			t.Fatalf("Copy() error = %v", err)
		}

		if len(svc.creates) != 1 {
			t.Fatalf("expected 1 create call, got %d", len(svc.creates))
		}
		if got := svc.creates[0]; got.Meta.Title != "My Mix" || got.Meta.Description != "desc" || !got.Private {
			t.Errorf("expected private \"My Mix\" with the source description, got %+v", got)
		}
		if want := []string{"a3", "a2", "a1"}; !slices.Equal(svc.appendedVideos(), want) {
			t.Errorf("expected inserts %v, got %v", want, svc.appendedVideos())
		}
		for _, call := range svc.appends {
			if call.PlaylistID != result.DestinationID {
				t.Errorf("insert targeted %s, expected %s", call.PlaylistID, result.DestinationID)
			}
		}
		if result.State != Done || result.Appended() != 3 {
			t.Errorf("unexpected result: state=%v appended=%d", result.State, result.Appended())
		}
	})

	t.Run("ascending copy preserves source order", func(t *testing.T) {
		svc := myMix()
		result, err := NewCopyEngine(svc, nil).Copy(context.Background(), "XXX", CopyOptions{}, nil)
		if err != nil {
			t.Fatalf("Copy() error = %v", err)
		}
		if !slices.Equal(svc.items[result.DestinationID], svc.items["XXX"]) {
			t.Errorf("destination %v does not match source %v", svc.items[result.DestinationID], svc.items["XXX"])
		}
	})

	t.Run("copying twice creates two playlists", func(t *testing.T) {
		svc := myMix()
		engine := NewCopyEngine(svc, nil)

		first, err := engine.Copy(context.Background(), "XXX", CopyOptions{}, nil)
		if err != nil {
			t.Fatalf("first Copy() error = %v", err)
		}
		second, err := engine.Copy(context.Background(), "XXX", CopyOptions{}, nil)
		if err != nil {
			t.Fatalf("second Copy() error = %v", err)
		}
		if first.DestinationID == second.DestinationID {
			t.Errorf("expected distinct destinations, both %s", first.DestinationID)
		}
		if len(svc.appends) != 6 {
			t.Errorf("expected 6 inserts, got %d", len(svc.appends))
		}
	})

	t.Run("empty source creates an empty playlist", func(t *testing.T) {
		svc := newFakeService()
		svc.playlists["EMPTY"] = &models.PlaylistMetadata{Title: "Nothing"}

		result, err := NewCopyEngine(svc, nil).Copy(context.Background(), "EMPTY", CopyOptions{}, nil)
		if err != nil {
			t.Fatalf("Copy() error = %v", err)
		}
		if result.DestinationID == "" || len(svc.appends) != 0 {
			t.Errorf("expected a destination and no inserts, got %+v / %d", result, len(svc.appends))
		}
	})

	t.Run("requires a source id", func(t *testing.T) {
		_, err := NewCopyEngine(myMix(), nil).Copy(context.Background(), " ", CopyOptions{}, nil)
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("requires a service", func(t *testing.T) {
		_, err := NewCopyEngine(nil, nil).Copy(context.Background(), "XXX", CopyOptions{}, nil)
		if !errors.Is(err, shared.ErrConfiguration) {
			t.Errorf("expected ErrConfiguration, got %v", err)
		}
	})
}

func TestCopyEngine_Failures(t *testing.T) {
	t.Run("append failure at k stops the copy", func(t *testing.T) {
		for k := 1; k <= 5; k++ {
			t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
				svc := newFakeService()
				svc.playlists["SRC"] = &models.PlaylistMetadata{Title: "Five"}
				svc.items["SRC"] = []string{"v1", "v2", "v3", "v4", "v5"}
				svc.failAppend = k

				result, err := NewCopyEngine(svc, nil).Copy(context.Background(), "SRC", CopyOptions{}, nil)
				if !errors.Is(err, shared.ErrRemoteAPI) {
					t.Fatalf("expected ErrRemoteAPI, got %v", err)
				}
				if len(svc.appends) != k {
					t.Errorf("expected exactly %d insert calls, got %d", k, len(svc.appends))
				}
				if !slices.Equal(svc.appendedVideos(), svc.items["SRC"][:k]) {
					t.Errorf("expected inserts %v, got %v", svc.items["SRC"][:k], svc.appendedVideos())
				}
				if result.State != Failed || result.FailedAt != Appending || result.Appended() != k-1 {
					t.Errorf("unexpected result: state=%v at=%v appended=%d", result.State, result.FailedAt, result.Appended())
				}
				if result.DestinationID == "" {
					t.Error("expected the partial destination id to be reported")
				}
				if len(svc.deleted) != 0 {
					t.Error("expected the partial destination to be kept by default")
				}
			})
		}
	})

	tests := []struct {
		name        string
		setup       func(*fakeService)
		sourceID    string
		wantErr     error
		wantCreates int
		wantAppends int
		wantAt      State
	}{
		{
			name:     "unknown source",
			sourceID: "missing",
			wantErr:  shared.ErrPlaylistNotFound,
		},
		{
			name:     "metadata auth failure",
			sourceID: "XXX",
			setup:    func(f *fakeService) { f.metadataErr = fmt.Errorf("%w: refresh rejected", shared.ErrInvalidGrant) },
			wantErr:  shared.ErrAuth,
		},
		{
			name:        "create failure",
			sourceID:    "XXX",
			setup:       func(f *fakeService) { f.createErr = &shared.APIError{Op: "playlists.insert", Status: 400} },
			wantErr:     shared.ErrRemoteAPI,
			wantCreates: 1,
			wantAt:      MetadataFetched,
		},
		{
			name:        "enumeration failure",
			sourceID:    "XXX",
			setup:       func(f *fakeService) { f.listErr = &shared.APIError{Op: "playlistItems.list", Status: 500} },
			wantErr:     shared.ErrRemoteAPI,
			wantCreates: 1,
			wantAt:      DestinationCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := myMix()
			if tt.setup != nil {
				tt.setup(svc)
			}

			result, err := NewCopyEngine(svc, nil).Copy(context.Background(), tt.sourceID, CopyOptions{}, nil)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if result.State != Failed {
				t.Errorf("expected Failed state, got %v", result.State)
			}
			if result.FailedAt != tt.wantAt {
				t.Errorf("expected last state %v before failure, got %v", tt.wantAt, result.FailedAt)
			}
			if len(svc.creates) != tt.wantCreates {
				t.Errorf("expected %d create calls, got %d", tt.wantCreates, len(svc.creates))
			}
			if len(svc.appends) != tt.wantAppends {
				t.Errorf("expected %d insert calls, got %d", tt.wantAppends, len(svc.appends))
			}
		})
	}

	t.Run("error names the failing step", func(t *testing.T) {
		svc := myMix()
		svc.failAppend = 2

		_, err := NewCopyEngine(svc, nil).Copy(context.Background(), "XXX", CopyOptions{}, nil)
		if err == nil || !strings.Contains(err.Error(), "append video a2 (2/3)") {
			t.Errorf("expected step context in error, got %v", err)
		}
	})
}

func TestCopyEngine_Cleanup(t *testing.T) {
	t.Run("deletes the partial destination", func(t *testing.T) {
		svc := myMix()
		svc.failAppend = 3

		result, err := NewCopyEngine(svc, nil).Copy(context.Background(), "XXX", CopyOptions{CleanupOnFailure: true}, nil)
		if err == nil {
			t.Fatal("expected an error")
		}
		if !slices.Equal(svc.deleted, []string{result.DestinationID}) {
			t.Errorf("expected %s to be deleted, got %v", result.DestinationID, svc.deleted)
		}
		if !result.CleanedUp {
			t.Error("expected CleanedUp to be set")
		}
	})

	t.Run("joins the delete error", func(t *testing.T) {
		svc := myMix()
		svc.failAppend = 1
		svc.deleteErr = errors.New("delete refused")

		result, err := NewCopyEngine(svc, nil).Copy(context.Background(), "XXX", CopyOptions{CleanupOnFailure: true}, nil)
		if !errors.Is(err, shared.ErrRemoteAPI) {
			t.Errorf("expected original error kind to survive, got %v", err)
		}
		if err == nil || !strings.Contains(err.Error(), "delete refused") {
			t.Errorf("expected delete error to be joined, got %v", err)
		}
		if result.CleanedUp {
			t.Error("expected CleanedUp to be false")
		}
	})

	t.Run("nothing to delete when creation failed", func(t *testing.T) {
		svc := myMix()
		svc.createErr = errors.New("nope")

		_, _ = NewCopyEngine(svc, nil).Copy(context.Background(), "XXX", CopyOptions{CleanupOnFailure: true}, nil)
		if len(svc.deleted) != 0 {
			t.Errorf("expected no delete, got %v", svc.deleted)
		}
	})

	t.Run("runs after cancellation", func(t *testing.T) {
		svc := myMix()
		svc.failAppend = 1
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, _ = NewCopyEngine(svc, nil).Copy(ctx, "XXX", CopyOptions{CleanupOnFailure: true}, nil)
		if len(svc.deleted) != 1 {
			t.Errorf("expected cleanup despite canceled context, got %v", svc.deleted)
		}
	})
}

func TestCopyEngine_Privacy(t *testing.T) {
	tests := []struct {
		name        string
		policy      PrivacyPolicy
		source      models.Visibility
		wantPrivate bool
	}{
		{"private policy on public source", PrivacyPrivate, models.Public, true},
		{"public policy on private source", PrivacyPublic, models.Private, false},
		{"source policy on public source", PrivacySource, models.Public, false},
		{"source policy on private source", PrivacySource, models.Private, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := myMix()
			svc.playlists["XXX"].Visibility = tt.source

			if _, err := NewCopyEngine(svc, nil).Copy(context.Background(), "XXX", CopyOptions{Privacy: tt.policy}, nil); err != nil {
				t.Fatalf("Copy() error = %v", err)
			}
			if svc.creates[0].Private != tt.wantPrivate {
				t.Errorf("expected private=%v, got %v", tt.wantPrivate, svc.creates[0].Private)
			}
		})
	}
}

func TestParsePrivacyPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    PrivacyPolicy
		wantErr bool
	}{
		{"", PrivacyPrivate, false},
		{"private", PrivacyPrivate, false},
		{"PUBLIC", PrivacyPublic, false},
		{" source ", PrivacySource, false},
		{"unlisted", PrivacyPrivate, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePrivacyPolicy(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePrivacyPolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParsePrivacyPolicy(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if err != nil && !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestCopyEngine_DryRun(t *testing.T) {
	svc := myMix()
	recorder := &fakeRecorder{}

	result, err := NewCopyEngine(svc, nil).WithRecorder(recorder).Copy(context.Background(), "XXX", CopyOptions{Order: models.Descending, DryRun: true}, nil)
	if err != nil {
		t.Fatalf("Copy() error = %v", err)
	}
	if len(svc.creates) != 0 || len(svc.appends) != 0 {
		t.Errorf("expected no writes, got %d creates and %d inserts", len(svc.creates), len(svc.appends))
	}
	if want := []string{"a3", "a2", "a1"}; !slices.Equal(result.VideoIDs, want) {
		t.Errorf("expected %v, got %v", want, result.VideoIDs)
	}
	if result.DestinationID != "" || result.State != Done {
		t.Errorf("unexpected result: %+v", result)
	}
	if len(recorder.runs) != 0 {
		t.Error("expected dry runs not to be recorded")
	}
}

func TestCopyEngine_Progress(t *testing.T) {
	t.Run("reports each state in order", func(t *testing.T) {
		progress := make(chan ProgressUpdate, 100)
		if _, err := NewCopyEngine(myMix(), nil).Copy(context.Background(), "XXX", CopyOptions{}, progress); err != nil {
			t.Fatalf("Copy() error = %v", err)
		}

		var states []State
		for _, u := range drain(progress) {
			if len(states) == 0 || states[len(states)-1] != u.State {
				states = append(states, u.State)
			}
		}
		want := []State{Start, MetadataFetched, DestinationCreated, ItemsEnumerated, Appending, Done}
		if !slices.Equal(states, want) {
			t.Errorf("expected states %v, got %v", want, states)
		}
	})

	t.Run("append updates carry step counts", func(t *testing.T) {
		progress := make(chan ProgressUpdate, 100)
		_, _ = NewCopyEngine(myMix(), nil).Copy(context.Background(), "XXX", CopyOptions{}, progress)

		step := 0
		for _, u := range drain(progress) {
			if u.State != Appending {
				continue
			}
			step++
			if u.Step != step || u.Total != 3 {
				t.Errorf("expected step %d/3, got %d/%d", step, u.Step, u.Total)
			}
			if _, ok := u.Data.(*models.InsertResult); !ok {
				t.Errorf("expected *models.InsertResult data, got %T", u.Data)
			}
		}
		if step != 3 {
			t.Errorf("expected 3 append updates, got %d", step)
		}
	})

	t.Run("failure ends with a failed update", func(t *testing.T) {
		svc := myMix()
		svc.failAppend = 1
		progress := make(chan ProgressUpdate, 100)
		_, _ = NewCopyEngine(svc, nil).Copy(context.Background(), "XXX", CopyOptions{}, progress)

		updates := drain(progress)
		if last := updates[len(updates)-1]; last.State != Failed || !last.State.Terminal() {
			t.Errorf("expected final Failed update, got %+v", last)
		}
	})

	t.Run("full channel never blocks", func(t *testing.T) {
		progress := make(chan ProgressUpdate)
		if _, err := NewCopyEngine(myMix(), nil).Copy(context.Background(), "XXX", CopyOptions{}, progress); err != nil {
			t.Fatalf("Copy() error = %v", err)
		}
	})
}

func TestCopyEngine_Recorder(t *testing.T) {
	t.Run("records a completed run", func(t *testing.T) {
		recorder := &fakeRecorder{}
		result, err := NewCopyEngine(myMix(), nil).WithRecorder(recorder).Copy(context.Background(), "XXX", CopyOptions{Order: models.Descending}, nil)
		if err != nil {
			t.Fatalf("Copy() error = %v", err)
		}
		if len(recorder.runs) != 1 || recorder.updates != 1 {
			t.Fatalf("expected 1 create and 1 update, got %d / %d", len(recorder.runs), recorder.updates)
		}

		run := recorder.runs[0]
		if run.Status() != models.CopyRunCompleted || run.DestinationPlaylistID() != result.DestinationID {
			t.Errorf("unexpected run: status=%s dest=%s", run.Status(), run.DestinationPlaylistID())
		}
		if run.ItemsTotal() != 3 || run.ItemsCopied() != 3 || run.Order() != "desc" {
			t.Errorf("unexpected counts: %d/%d order=%s", run.ItemsCopied(), run.ItemsTotal(), run.Order())
		}
		if result.RunID != run.ID() {
			t.Errorf("expected result run id %s, got %s", run.ID(), result.RunID)
		}
		if err := run.Validate(); err != nil {
			t.Errorf("recorded run is invalid: %v", err)
		}
	})

	t.Run("records a failed run", func(t *testing.T) {
		svc := myMix()
		svc.failAppend = 2
		recorder := &fakeRecorder{}

		_, _ = NewCopyEngine(svc, nil).WithRecorder(recorder).Copy(context.Background(), "XXX", CopyOptions{}, nil)
		run := recorder.runs[0]
		if run.Status() != models.CopyRunFailed || run.ItemsCopied() != 1 {
			t.Errorf("unexpected run: status=%s copied=%d", run.Status(), run.ItemsCopied())
		}
		if !strings.Contains(run.ErrorMessage(), "forbidden") {
			t.Errorf("expected error message to be kept, got %q", run.ErrorMessage())
		}
	})

	t.Run("recorder errors never fail a copy", func(t *testing.T) {
		recorder := &fakeRecorder{createErr: errors.New("disk full")}
		if _, err := NewCopyEngine(myMix(), nil).WithRecorder(recorder).Copy(context.Background(), "XXX", CopyOptions{}, nil); err != nil {
			t.Errorf("expected copy to succeed, got %v", err)
		}

		recorder = &fakeRecorder{updateErr: errors.New("disk full")}
		if _, err := NewCopyEngine(myMix(), nil).WithRecorder(recorder).Copy(context.Background(), "XXX", CopyOptions{}, nil); err != nil {
			t.Errorf("expected copy to succeed, got %v", err)
		}
	})
}

func TestState_String(t *testing.T) {
	for s := Start; s <= CleaningUp; s++ {
		if s.String() == "" {
			t.Errorf("state %d has no name", s)
		}
	}
	if State(99).String() != "" {
		t.Error("expected unknown state to have an empty name")
	}
}
