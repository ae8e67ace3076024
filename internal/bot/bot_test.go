package bot_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"sonarrbot/internal/acl"
	"sonarrbot/internal/bot"
	"sonarrbot/internal/config"
	"sonarrbot/internal/i18n"
	"sonarrbot/internal/logging"
	"sonarrbot/internal/optioncache"
	"sonarrbot/internal/sonarr"
	"sonarrbot/internal/telegram"
	"sonarrbot/internal/testsupport"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// sonarrStub serves the handful of API endpoints the wizard touches and
// records every submitted add request and command.
type sonarrStub struct {
	mu       sync.Mutex
	lookup   string
	added    []sonarr.AddRequest
	commands []string
	fail     bool
}

func (s *sonarrStub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/series/lookup", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.fail {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(s.lookup))
	})
	mux.HandleFunc("/api/profile", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"name":"SD"},{"id":2,"name":"HD"}]`))
	})
	mux.HandleFunc("/api/rootfolder", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"path":"/tv"}]`))
	})
	mux.HandleFunc("/api/series", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			var request sonarr.AddRequest
			if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			s.mu.Lock()
			s.added = append(s.added, request)
			s.mu.Unlock()
			w.WriteHeader(http.StatusCreated)
			return
		}
		_, _ = w.Write([]byte(`[{"title":"The Wire","year":2002,"status":"ended","seasonCount":5}]`))
	})
	mux.HandleFunc("/api/calendar", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"title":"Pilot","airDate":"2026-03-02","seasonNumber":1,"episodeNumber":1,"series":{"title":"The Wire"}}]`))
	})
	mux.HandleFunc("/api/command", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.mu.Lock()
		s.commands = append(s.commands, body["name"])
		s.mu.Unlock()
		_, _ = w.Write([]byte(`{"id":1}`))
	})
	return mux
}

func (s *sonarrStub) addedRequests() []sonarr.AddRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]sonarr.AddRequest, len(s.added))
	copy(out, s.added)
	return out
}

func (s *sonarrStub) sentCommands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.commands))
	copy(out, s.commands)
	return out
}

const lostLookup = `[{"title":"Lost","year":2004,"tvdbId":73739,"titleSlug":"lost","seasons":[{"seasonNumber":0,"monitored":true},{"seasonNumber":1,"monitored":true},{"seasonNumber":2,"monitored":true},{"seasonNumber":3,"monitored":true}]}]`

type fixture struct {
	bot   *bot.Bot
	gate  *acl.Gate
	cache *optioncache.Cache
	rec   *testsupport.Recorder
	clock *fakeClock
	stub  *sonarrStub
}

func newFixture(t *testing.T, opts ...testsupport.ConfigOption) *fixture {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	return newFixtureWithConfig(t, cfg)
}

func newFixtureWithConfig(t *testing.T, cfg *config.Config) *fixture {
	t.Helper()

	stub := &sonarrStub{lookup: lostLookup}
	server := httptest.NewServer(stub.handler())
	t.Cleanup(server.Close)

	clock := newFakeClock()
	cache := optioncache.New(cfg.CacheTTL(), optioncache.WithClock(clock.Now))
	t.Cleanup(cache.Close)

	gate := testsupport.MustOpenGate(t, cfg)
	client := sonarr.NewWithDoer(server.URL, "test-api-key", server.Client(), logging.NewNop())
	catalog, err := i18n.New(cfg.Bot.Language)
	if err != nil {
		t.Fatalf("i18n.New: %v", err)
	}
	rec := testsupport.NewRecorder()

	return &fixture{
		bot:   bot.New(cfg, gate, cache, client, catalog, rec, logging.NewNop()),
		gate:  gate,
		cache: cache,
		rec:   rec,
		clock: clock,
		stub:  stub,
	}
}

func (f *fixture) allow(t *testing.T, id int64, username string) {
	t.Helper()
	if _, err := f.gate.Authorize(context.Background(), acl.Record{ID: id, Username: username}); err != nil {
		t.Fatalf("authorize %d: %v", id, err)
	}
}

func (f *fixture) message(t *testing.T, userID int64, text string) {
	t.Helper()
	err := f.bot.HandleUpdate(context.Background(), telegram.Update{
		ChatID:   userID,
		UserID:   userID,
		Username: fmt.Sprintf("user%d", userID),
		Text:     text,
	})
	if err != nil {
		t.Fatalf("handle %q: %v", text, err)
	}
}

func TestUnauthorizedUserIsDenied(t *testing.T) {
	f := newFixture(t)

	f.message(t, 42, "/start")
	if !strings.Contains(f.rec.Last().Text, "not authorized") {
		t.Fatalf("command reply = %q", f.rec.Last().Text)
	}

	f.rec.Reset()
	f.message(t, 42, "hello there")
	if !strings.Contains(f.rec.Last().Text, "not authorized") {
		t.Fatalf("freeform reply = %q", f.rec.Last().Text)
	}
}

func TestAuthPasswordFlow(t *testing.T) {
	f := newFixture(t, testsupport.WithPassword("hunter2"))

	f.message(t, 42, "/auth wrong")
	if !strings.Contains(f.rec.Last().Text, "Invalid password") {
		t.Fatalf("wrong password reply = %q", f.rec.Last().Text)
	}

	f.rec.Reset()
	f.message(t, 42, "/auth hunter2")
	texts := f.rec.Texts()
	if !strings.Contains(texts, "You have been authorized") {
		t.Fatalf("grant reply missing: %q", texts)
	}
	// The first authorized user on an owner-less install is invited to
	// claim ownership.
	if !strings.Contains(texts, "Your User ID: 42") {
		t.Fatalf("owner bootstrap prompt missing: %q", texts)
	}

	f.rec.Reset()
	f.message(t, 42, "/auth hunter2")
	if !strings.Contains(f.rec.Last().Text, "Already authorized") {
		t.Fatalf("repeat auth reply = %q", f.rec.Last().Text)
	}
}

func TestAuthNotifiesOwner(t *testing.T) {
	f := newFixture(t, testsupport.WithOwner(1))
	f.allow(t, 1, "admin")

	f.rec.Reset()
	f.message(t, 42, "/auth test-password")

	var ownerNote bool
	for _, msg := range f.rec.Sent() {
		if msg.ChatID == 1 && strings.Contains(msg.Text, "has been granted access") {
			ownerNote = true
		}
	}
	if !ownerNote {
		t.Fatalf("owner was not notified: %q", f.rec.Texts())
	}
}

func TestAuthPersistFailureReturnsError(t *testing.T) {
	f := newFixture(t)

	// With the database closed the grant cannot be written back; the
	// error must surface to the caller instead of being swallowed into
	// a chat reply.
	if err := f.gate.Close(); err != nil {
		t.Fatalf("close gate: %v", err)
	}

	err := f.bot.HandleUpdate(context.Background(), telegram.Update{
		ChatID:   42,
		UserID:   42,
		Username: "alice",
		Text:     "/auth test-password",
	})
	if !errors.Is(err, acl.ErrPersist) {
		t.Fatalf("HandleUpdate = %v, want a persist failure", err)
	}
}

func TestQueryOffersSeriesMenu(t *testing.T) {
	f := newFixture(t)
	f.allow(t, 42, "alice")

	f.message(t, 42, "/q Lost")

	last := f.rec.Last()
	if !strings.Contains(last.Text, "*Found 1 series:*") {
		t.Fatalf("query reply = %q", last.Text)
	}
	if len(last.Keyboard) != 1 || last.Keyboard[0][0] != "Lost - 2004" {
		t.Fatalf("keyboard = %v", last.Keyboard)
	}
	if !last.OneTime {
		t.Fatal("series keyboard should be one-time")
	}
}

func TestQueryNoResults(t *testing.T) {
	f := newFixture(t)
	f.allow(t, 42, "alice")
	f.stub.lookup = `[]`

	f.message(t, 42, "/q Nothing Here")
	if !strings.Contains(f.rec.Last().Text, "Oh no! could not find Nothing Here") {
		t.Fatalf("reply = %q", f.rec.Last().Text)
	}
}

func TestWizardEndToEnd(t *testing.T) {
	f := newFixture(t)
	f.allow(t, 42, "alice")

	f.message(t, 42, "/q Lost")
	f.message(t, 42, "Lost - 2004")
	if !strings.Contains(f.rec.Last().Text, "*Found 2 profiles:*") {
		t.Fatalf("profile menu = %q", f.rec.Last().Text)
	}

	f.message(t, 42, "HD")
	if !strings.Contains(f.rec.Last().Text, "*Found 1 folders:*") {
		t.Fatalf("folder menu = %q", f.rec.Last().Text)
	}

	// Folder paths start with a slash; while a folder choice is pending
	// the reply must not be swallowed by command routing.
	f.message(t, 42, "/tv")
	if !strings.Contains(f.rec.Last().Text, "*Select which seasons to monitor:*") {
		t.Fatalf("monitor menu = %q", f.rec.Last().Text)
	}

	f.message(t, 42, "first")
	if !strings.Contains(f.rec.Last().Text, "Series `Lost` added") {
		t.Fatalf("final reply = %q", f.rec.Last().Text)
	}

	added := f.stub.addedRequests()
	if len(added) != 1 {
		t.Fatalf("added %d series", len(added))
	}
	request := added[0]
	if request.TVDBID != 73739 || request.QualityProfileID != 2 || request.RootFolderPath != "/tv" {
		t.Fatalf("payload wrong: %+v", request)
	}
	for _, season := range request.Seasons {
		want := season.SeasonNumber == 1
		if season.Monitored != want {
			t.Errorf("season %d monitored = %v", season.SeasonNumber, season.Monitored)
		}
	}

	// The flow is finished: another keyboard echo is unroutable.
	f.rec.Reset()
	f.message(t, 42, "first")
	if !strings.Contains(f.rec.Last().Text, "Unsure what's going on") {
		t.Fatalf("post-wizard reply = %q", f.rec.Last().Text)
	}
}

func TestSelectionRetryAfterNoMatch(t *testing.T) {
	f := newFixture(t)
	f.allow(t, 42, "alice")

	f.message(t, 42, "/q Lost")
	f.message(t, 42, "Wrong Title")
	if !strings.Contains(f.rec.Last().Text, "could not find the series with title Wrong Title") {
		t.Fatalf("no-match reply = %q", f.rec.Last().Text)
	}

	// State is untouched; the correct echo still advances.
	f.message(t, 42, "Lost - 2004")
	if !strings.Contains(f.rec.Last().Text, "*Found 2 profiles:*") {
		t.Fatalf("retry reply = %q", f.rec.Last().Text)
	}
}

func TestExpiredFlowAfterTTL(t *testing.T) {
	f := newFixture(t)
	f.allow(t, 42, "alice")

	f.message(t, 42, "/q Lost")
	f.clock.Advance(10 * time.Second)
	f.message(t, 42, "Lost - 2004")
	if !strings.Contains(f.rec.Last().Text, "*Found 2 profiles:*") {
		t.Fatalf("profile menu = %q", f.rec.Last().Text)
	}

	// 121 seconds after the search the series list is gone, even though
	// the profile step itself is younger than the TTL. The stale echo
	// aborts the flow instead of matching.
	f.clock.Advance(111 * time.Second)
	f.message(t, 42, "Lost - 2004")
	if !strings.Contains(f.rec.Last().Text, "try searching again") {
		t.Fatalf("expired reply = %q", f.rec.Last().Text)
	}
	if len(f.stub.addedRequests()) != 0 {
		t.Fatal("expired flow must not reach the server")
	}
}

func TestFullyExpiredFlowIsUnroutable(t *testing.T) {
	f := newFixture(t)
	f.allow(t, 42, "alice")

	f.message(t, 42, "/q Lost")
	f.clock.Advance(121 * time.Second)

	// State and option lists expired together; nothing routes the echo.
	f.message(t, 42, "Lost - 2004")
	if !strings.Contains(f.rec.Last().Text, "Unsure what's going on") {
		t.Fatalf("reply = %q", f.rec.Last().Text)
	}
}

func TestClearResetsAnyFlow(t *testing.T) {
	f := newFixture(t)
	f.allow(t, 42, "alice")

	f.message(t, 42, "/q Lost")
	f.message(t, 42, "Lost - 2004")

	f.message(t, 42, "/clear")
	last := f.rec.Last()
	if !strings.Contains(last.Text, "cleared") {
		t.Fatalf("clear reply = %q", last.Text)
	}
	if !last.HideKeyboard {
		t.Fatal("clear must hide the reply keyboard")
	}
	if f.cache.Len() != 0 {
		t.Fatalf("cache still holds %d entries", f.cache.Len())
	}

	f.rec.Reset()
	f.message(t, 42, "HD")
	if !strings.Contains(f.rec.Last().Text, "Unsure what's going on") {
		t.Fatalf("post-clear reply = %q", f.rec.Last().Text)
	}
}

func TestUpcomingValidatesDays(t *testing.T) {
	f := newFixture(t)
	f.allow(t, 42, "alice")

	f.message(t, 42, "/upcoming soon")
	if !strings.Contains(f.rec.Last().Text, "days must be a number between 1 and 30") {
		t.Fatalf("invalid days reply = %q", f.rec.Last().Text)
	}

	f.message(t, 42, "/upcoming 99")
	if !strings.Contains(f.rec.Last().Text, "days must be a number between 1 and 30") {
		t.Fatalf("out-of-range reply = %q", f.rec.Last().Text)
	}

	f.message(t, 42, "/upcoming 7")
	if !strings.Contains(f.rec.Last().Text, "The Wire") || !strings.Contains(f.rec.Last().Text, "S01E01") {
		t.Fatalf("upcoming reply = %q", f.rec.Last().Text)
	}
}

func TestLibraryFilters(t *testing.T) {
	f := newFixture(t)
	f.allow(t, 42, "alice")

	f.message(t, 42, "/library wire")
	if !strings.Contains(f.rec.Last().Text, "The Wire - 2002") {
		t.Fatalf("library reply = %q", f.rec.Last().Text)
	}

	f.message(t, 42, "/library nothing")
	if !strings.Contains(f.rec.Last().Text, "could not find nothing in your library") {
		t.Fatalf("empty filter reply = %q", f.rec.Last().Text)
	}
}

func TestAdminCommandsRequireOwner(t *testing.T) {
	f := newFixture(t, testsupport.WithOwner(1))
	f.allow(t, 1, "admin")
	f.allow(t, 42, "alice")

	for _, command := range []string{"/users", "/revoke", "/unrevoke", "/rss", "/refresh", "/wanted"} {
		f.rec.Reset()
		f.message(t, 42, command)
		if !strings.Contains(f.rec.Last().Text, "only available to the bot owner") {
			t.Fatalf("%s reply = %q", command, f.rec.Last().Text)
		}
	}
}

func TestServerCommands(t *testing.T) {
	f := newFixture(t, testsupport.WithOwner(1))
	f.allow(t, 1, "admin")

	f.message(t, 1, "/rss")
	f.message(t, 1, "/refresh")
	f.message(t, 1, "/wanted")

	got := f.stub.sentCommands()
	want := []string{sonarr.CommandRSSSync, sonarr.CommandRefreshSeries, sonarr.CommandMissingEpisodeSearch}
	if len(got) != len(want) {
		t.Fatalf("commands = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("command %d = %q, want %q", i, got[i], want[i])
		}
	}
	if !strings.Contains(f.rec.Texts(), "RSS Sync command sent.") {
		t.Fatalf("rss confirmation missing: %q", f.rec.Texts())
	}
}
