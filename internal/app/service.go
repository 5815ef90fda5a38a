// Package service assembles the classification pipeline: it pulls raw
// results from a source, computes bests from athlete histories, classifies
// each new result, filters already-seen ones and publishes the ranked batch.
package service

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/prairielabs/trackwatch/internal/adapters/report"
	"github.com/prairielabs/trackwatch/internal/adapters/source"
	"github.com/prairielabs/trackwatch/internal/domain/best"
	"github.com/prairielabs/trackwatch/internal/domain/classify"
	"github.com/prairielabs/trackwatch/internal/domain/dedupe"
	"github.com/prairielabs/trackwatch/internal/domain/event"
	"github.com/prairielabs/trackwatch/internal/domain/mark"
	"github.com/prairielabs/trackwatch/internal/domain/model"
	"github.com/prairielabs/trackwatch/internal/domain/rankings"
	"github.com/prairielabs/trackwatch/internal/domain/standards"
	"github.com/prairielabs/trackwatch/pkg/logger"
	"github.com/prairielabs/trackwatch/pkg/metrics"
)

// Service implements the API dependencies for the results tracker.
type Service struct {
	mu sync.RWMutex

	// Core components
	source     source.Provider
	history    source.HistoryProvider
	seen       dedupe.SeenSet
	classifier *classify.Classifier
	notifier   report.Notifier

	// Configuration
	workerCount     int
	daysBack        int
	qualifyingSpots int
	useStandards    bool
	feedPath        string
	csvPath         string
	classifyOpts    []classify.Option

	// State
	latest  report.Feed
	hasFeed bool
	running atomic.Bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount bounds the per-athlete classification fan-out.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithDaysBack sets the recent-results cutoff window.
func WithDaysBack(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.daysBack = days
		}
	}
}

// WithHistoryProvider sets where athlete histories come from. Without one,
// bests are computed from the batch alone.
func WithHistoryProvider(h source.HistoryProvider) Option {
	return func(s *Service) {
		if h != nil {
			s.history = h
		}
	}
}

// WithStaleFlagDowngrade controls whether contradicted source PR flags are
// downgraded; passed through to the classifier.
func WithStaleFlagDowngrade(enabled bool) Option {
	return func(s *Service) {
		s.classifyOpts = append(s.classifyOpts, classify.WithStaleFlagDowngrade(enabled))
	}
}

// WithNotifier sets the new-result notifier.
func WithNotifier(n report.Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithStandards enables qualifying-standard enrichment.
func WithStandards(enabled bool) Option {
	return func(s *Service) {
		s.useStandards = enabled
	}
}

// WithQualifyingSpots sets the performance-list qualifying depth.
func WithQualifyingSpots(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.qualifyingSpots = n
		}
	}
}

// WithFeedPath enables writing each run's JSON feed to disk.
func WithFeedPath(path string) Option {
	return func(s *Service) {
		s.feedPath = path
	}
}

// WithCSVPath enables writing each run's CSV export to disk.
func WithCSVPath(path string) Option {
	return func(s *Service) {
		s.csvPath = path
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service around a result source and a seen-set.
func New(src source.Provider, seen dedupe.SeenSet, opts ...Option) *Service {
	s := &Service{
		source:          src,
		seen:            seen,
		workerCount:     runtime.NumCPU(),
		daysBack:        7,
		qualifyingSpots: 16,
		useStandards:    true,
		logger:          logger.Get().Named("service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.classifier = classify.New(s.classifyOpts...)
	return s
}

// eventHistory accumulates one athlete's results for one event identity.
// Entries are deduplicated by result key so a result never competes against
// its own appearance in the fetched history.
type eventHistory struct {
	id      event.Identity
	entries best.History
	keys    map[string]bool
}

// athleteHistories resolves event identities for one athlete, reconciling
// nearby distances (unit-conversion drift between payloads) onto one event.
type athleteHistories struct {
	byKey      map[string]*eventHistory
	byDistance map[int]string
}

func newAthleteHistories() *athleteHistories {
	return &athleteHistories{
		byKey:      make(map[string]*eventHistory),
		byDistance: make(map[int]string),
	}
}

func (a *athleteHistories) resolve(id event.Identity) *eventHistory {
	if eh, ok := a.byKey[id.Key]; ok {
		return eh
	}
	if id.Distance > 0 {
		known := make([]int, 0, len(a.byDistance))
		for d := range a.byDistance {
			known = append(known, d)
		}
		if d, ok := event.ClosestDistance(id.Distance, known); ok {
			if eh, ok := a.byKey[a.byDistance[d]]; ok {
				return eh
			}
		}
	}
	eh := &eventHistory{id: id, keys: make(map[string]bool)}
	a.byKey[id.Key] = eh
	if id.Distance > 0 {
		a.byDistance[id.Distance] = id.Key
	}
	return eh
}

// add parses and stores one result, returning its event history and entry.
func (a *athleteHistories) add(r model.RawResult) (*eventHistory, best.Entry) {
	eh := a.resolve(event.Normalize(r.EventLabel))
	m := mark.Parse(r.MarkText, eh.id.Field)
	key := dedupe.ResultKey(r.MeetID, r.ResultID, eh.id.Key, r.MarkText)
	e := best.Entry{
		Mark:     m,
		MarkText: r.MarkText,
		SeasonID: r.SeasonID,
		Date:     r.MeetDate,
		Key:      key,
	}
	if !eh.keys[key] {
		eh.keys[key] = true
		eh.entries = append(eh.entries, e)
	}
	return eh, e
}

// listAgg accumulates canonical marks for one performance list.
type listAgg struct {
	id     event.Identity
	gender string
	marks  []float64
}

// Process classifies a batch of raw results. Athletes are processed by a
// bounded worker pool; the returned slice is in presentation order.
func (s *Service) Process(ctx context.Context, raw []model.RawResult) ([]model.ClassifiedResult, error) {
	byAthlete := make(map[string][]model.RawResult)
	for _, r := range raw {
		byAthlete[r.AthleteID] = append(byAthlete[r.AthleteID], r)
	}
	athleteIDs := make([]string, 0, len(byAthlete))
	for id := range byAthlete {
		athleteIDs = append(athleteIDs, id)
	}
	sort.Strings(athleteIDs)

	var (
		outMu sync.Mutex
		out   []model.ClassifiedResult
		agg   = make(map[string]*listAgg)
	)
	collect := func(id event.Identity, gender string, values []float64) {
		if gender == "" || len(values) == 0 {
			return
		}
		outMu.Lock()
		defer outMu.Unlock()
		k := id.Key + "_" + gender
		l, ok := agg[k]
		if !ok {
			l = &listAgg{id: id, gender: gender}
			agg[k] = l
		}
		l.marks = append(l.marks, values...)
	}

	workers := s.workerCount
	if workers > len(athleteIDs) {
		workers = len(athleteIDs)
	}
	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for athleteID := range jobs {
				classified := s.processAthlete(ctx, athleteID, byAthlete[athleteID], collect)
				outMu.Lock()
				out = append(out, classified...)
				outMu.Unlock()
			}
		}()
	}

feed:
	for _, id := range athleteIDs {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- id:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return out, err
	}

	Sort(out)
	s.logPlacements(ctx, out, agg)
	return out, nil
}

// processAthlete computes bests from the athlete's history plus the batch
// itself, then classifies each not-yet-seen batch result.
func (s *Service) processAthlete(ctx context.Context, athleteID string, batch []model.RawResult, collect func(event.Identity, string, []float64)) []model.ClassifiedResult {
	histories := newAthleteHistories()

	if s.history != nil {
		hist, err := s.history.History(ctx, athleteID)
		if err != nil {
			metrics.RecordSourceFetchError()
			s.logger.Warn(ctx, "history fetch failed; classifying against batch only",
				logger.String("athleteID", athleteID),
				logger.Error(err),
			)
		}
		for _, r := range hist {
			histories.add(r)
		}
	}

	// Batch results join the history first so same-day siblings compare
	// against each other; each candidate's own entry is excluded by key.
	type candidate struct {
		raw   model.RawResult
		eh    *eventHistory
		entry best.Entry
	}
	candidates := make([]candidate, 0, len(batch))
	for _, r := range batch {
		eh, entry := histories.add(r)
		candidates = append(candidates, candidate{raw: r, eh: eh, entry: entry})
	}

	var out []model.ClassifiedResult
	for _, c := range candidates {
		metrics.RecordResultProcessed()

		nonFinish := mark.IsNonFinish(c.raw.MarkText)
		if !c.entry.Mark.Valid && !nonFinish {
			metrics.RecordParseFailure()
			s.logger.Warn(ctx, "unparseable mark",
				logger.String("athleteID", athleteID),
				logger.String("event", c.raw.EventLabel),
				logger.String("mark", c.raw.MarkText),
			)
		}

		if s.seen.Seen(ctx, athleteID, c.entry.Key) {
			metrics.RecordResultDuplicate()
			continue
		}

		prevBest, hasPB := c.eh.entries.PreviousBest(c.entry)
		prevSeason, hasPS := c.eh.entries.PreviousSeasonBest(c.entry, c.eh.id.ComparableAcrossSeasons())

		outcome := s.classifier.Classify(classify.Input{
			Mark:          c.entry.Mark,
			NonFinish:     nonFinish,
			IsPR:          c.raw.IsPR,
			IsSR:          c.raw.IsSR,
			PrevBest:      prevBest,
			HasPrevBest:   hasPB,
			PrevSeason:    prevSeason,
			HasPrevSeason: hasPS,
		})

		cr := model.ClassifiedResult{
			RawResult:          c.raw,
			Mark:               c.entry.Mark,
			EventKey:           c.eh.id.Key,
			Record:             outcome.Record,
			PreviousBest:       outcome.PreviousBest,
			PreviousSeasonBest: outcome.PreviousSeason,
			ImprovementPct:     outcome.ImprovementPct,
			HasImprovement:     outcome.HasImprovement,
			DistanceFromPRPct:  outcome.DistanceFromPRPct,
			HasDistanceFromPR:  outcome.HasDistanceFromPR,
		}

		if s.useStandards && c.entry.Mark.Valid {
			indoor := !event.IsOutdoorSeason(c.raw.SeasonID)
			if std, ok := standards.Lookup(c.eh.id.Key, indoor, c.raw.Gender); ok {
				if diff, ok := standards.DiffPct(std, c.entry.Mark); ok {
					cr.Standard = std
					cr.StandardDiffPct = diff
					cr.HasStandard = true
				}
			}
		}

		s.seen.MarkSeen(ctx, athleteID, c.entry.Key)
		metrics.RecordResultNew()
		metrics.RecordClassification(string(cr.Record))
		out = append(out, cr)
	}

	// Contribute this athlete's valid marks to the performance lists.
	gender := ""
	if len(batch) > 0 {
		gender = batch[0].Gender
	}
	for _, eh := range histories.byKey {
		values := make([]float64, 0, len(eh.entries))
		for _, e := range eh.entries {
			if e.Mark.Valid {
				values = append(values, e.Mark.Value)
			}
		}
		collect(eh.id, gender, values)
	}

	return out
}

// logPlacements reports where each new record lands on the batch's
// performance lists, including the gap to the last qualifying spot.
func (s *Service) logPlacements(ctx context.Context, results []model.ClassifiedResult, agg map[string]*listAgg) {
	if len(agg) == 0 {
		return
	}
	book := rankings.NewBook(rankings.WithQualifyingSpots(s.qualifyingSpots))
	for _, l := range agg {
		book.Add(rankings.List{EventKey: l.id.Key, Gender: l.gender, Field: l.id.Field, Marks: l.marks})
	}
	for _, r := range results {
		if !r.Mark.Valid {
			continue
		}
		switch r.Record {
		case model.RecordPR, model.RecordSR, model.RecordFT:
		default:
			continue
		}
		p, ok := book.Place(r.EventKey, r.Gender, r.Mark.Value)
		if !ok {
			continue
		}
		fields := []logger.Field{
			logger.String("athlete", r.AthleteName),
			logger.String("event", r.EventKey),
			logger.String("mark", r.MarkText),
			logger.Int("rank", p.Rank),
			logger.Bool("qualifying", p.Ranked),
		}
		if p.HasGapToQualify {
			fields = append(fields, logger.Float64("gapToQualify", p.GapToQualify))
		}
		s.logger.Info(ctx, "performance list placement", fields...)
	}
}

// recordOrder is the presentation order of record types.
var recordOrder = map[model.RecordType]int{
	model.RecordPR:   0,
	model.RecordSR:   1,
	model.RecordFT:   2,
	model.RecordNone: 3,
	model.RecordDNS:  4,
}

// Sort arranges a classified batch for presentation: PRs first by improvement
// descending, then SRs likewise, then first times, ordinary results and
// non-finishes alphabetically by athlete.
func Sort(results []model.ClassifiedResult) {
	improvement := func(r model.ClassifiedResult) float64 {
		if r.HasImprovement {
			return r.ImprovementPct
		}
		return math.Inf(-1)
	}
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if recordOrder[a.Record] != recordOrder[b.Record] {
			return recordOrder[a.Record] < recordOrder[b.Record]
		}
		switch a.Record {
		case model.RecordPR, model.RecordSR:
			ai, bi := improvement(a), improvement(b)
			if ai != bi {
				return ai > bi
			}
		}
		if a.AthleteName != b.AthleteName {
			return a.AthleteName < b.AthleteName
		}
		return a.EventLabel < b.EventLabel
	})
}

// RunOnce executes one fetch-classify-persist run and publishes its feed.
func (s *Service) RunOnce(ctx context.Context) (model.RunSummary, error) {
	if !s.running.CompareAndSwap(false, true) {
		return model.RunSummary{}, ErrRunInProgress
	}
	defer s.running.Store(false)

	start := time.Now()
	summary := model.RunSummary{
		RunID:     uuid.NewString(),
		StartedAt: start,
		ByRecord:  make(map[model.RecordType]int),
	}

	cutoff := start.AddDate(0, 0, -s.daysBack)
	raw, err := s.source.RecentResults(ctx, cutoff)
	if err != nil {
		metrics.RecordSourceFetchError()
		return summary, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	summary.Fetched = len(raw)

	results, err := s.Process(ctx, raw)
	if err != nil {
		return summary, err
	}
	summary.New = len(results)
	summary.Duplicates = summary.Fetched - summary.New
	for _, r := range results {
		summary.ByRecord[r.Record]++
	}

	feed := report.NewFeed(summary.RunID, time.Now(), results)
	s.mu.Lock()
	s.latest = feed
	s.hasFeed = true
	s.mu.Unlock()

	if s.feedPath != "" {
		if err := feed.WriteFile(s.feedPath); err != nil {
			s.logger.Error(ctx, "feed export failed", logger.Error(err))
		}
	}
	if s.csvPath != "" {
		if err := report.WriteCSVFile(s.csvPath, results); err != nil {
			s.logger.Error(ctx, "csv export failed", logger.Error(err))
		}
	}

	if s.notifier != nil && len(results) > 0 {
		subject := fmt.Sprintf("%d new result(s)", len(results))
		if err := s.notifier.Notify(ctx, subject, results); err != nil {
			s.logger.Error(ctx, "notification failed", logger.Error(err))
		}
	}

	if err := s.seen.Persist(ctx); err != nil {
		metrics.RecordPersistError()
		summary.PersistFail = true
		s.logger.Error(ctx, "seen-set persist failed; state retained in memory", logger.Error(err))
	}

	summary.Duration = time.Since(start)
	metrics.UpdateSeenSetSize(s.seen.Size())
	metrics.RecordBatchDuration(summary.Duration.Seconds())
	metrics.UpdateLastRunUnix(time.Now().Unix())

	s.logger.Info(ctx, "run complete",
		logger.String("runID", summary.RunID),
		logger.Int("fetched", summary.Fetched),
		logger.Int("new", summary.New),
		logger.Int("duplicates", summary.Duplicates),
		logger.Any("byRecord", summary.ByRecord),
		logger.String("duration", summary.Duration.String()),
	)
	return summary, nil
}

// RunNow implements the HTTP API's run trigger.
func (s *Service) RunNow(ctx context.Context) (model.RunSummary, error) {
	return s.RunOnce(ctx)
}

// LatestFeed returns the most recent run's feed; ok is false before the
// first run completes.
func (s *Service) LatestFeed(_ context.Context) (report.Feed, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.hasFeed
}

// Run executes RunOnce immediately and then on every tick until the context
// is cancelled. Individual run failures are logged, not fatal.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	if _, err := s.RunOnce(ctx); err != nil {
		s.logger.Error(ctx, "run failed", logger.Error(err))
	}
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.Error(ctx, "run failed", logger.Error(err))
			}
		}
	}
}
