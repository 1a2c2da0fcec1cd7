package markalert

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/corpix/uarand"
	"github.com/jheinrich-dev/campusplan/internal/errors"
	"github.com/jheinrich-dev/campusplan/internal/logger"
	"github.com/jheinrich-dev/campusplan/internal/metrics"
	"golang.org/x/sync/errgroup"
)

const (
	defaultBaseURL = "https://selfservice.campus-dual.de"
	distPath       = "/acwork/mscoredist"

	// Bound on concurrent outbound fetches within one polling cycle.
	maxConcurrentFetches = 8
)

// Trailing sub-group suffix of a module code; the score endpoint only
// answers for the "-00" base module.
var moduleSuffixRegex = regexp.MustCompile(`-\d+$`)

// Poller fetches grade distributions from Campus Dual and diffs them
// against the stored snapshots.
type Poller struct {
	store      *Store
	httpClient *http.Client
	baseURL    string
	metrics    *metrics.Metrics
	log        *logger.Logger
}

// NewPoller creates a poller with a bounded request timeout.
//
// The Campus Dual certificate chain is not trusted by default root stores,
// so verification is disabled for this one client. This is a known,
// narrowly-scoped exception for exactly this integration; do not reuse
// this transport anywhere else.
func NewPoller(store *Store, timeout time.Duration, m *metrics.Metrics, log *logger.Logger) *Poller {
	return &Poller{
		store: store,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // see above
			},
		},
		baseURL: defaultBaseURL,
		metrics: m,
		log:     log.WithModule("campusdual"),
	}
}

// queryModuleCode normalizes a module code for the score endpoint by
// replacing the trailing group suffix with "-00".
func queryModuleCode(code string) string {
	return moduleSuffixRegex.ReplaceAllString(code, "-00")
}

// queryPeriodID maps a period onto the Campus Dual period id.
func queryPeriodID(period string) string {
	if period == PeriodSummer {
		return "002"
	}
	return "001"
}

// FetchDistribution fetches the current grade distribution of one exam.
func (p *Poller) FetchDistribution(ctx context.Context, exam Exam) (Distribution, error) {
	params := url.Values{}
	params.Set("module", queryModuleCode(exam.ModuleCode))
	params.Set("peryr", strconv.Itoa(exam.Year))
	params.Set("perid", queryPeriodID(exam.Period))
	reqURL := p.baseURL + distPath + "?" + params.Encode()

	start := time.Now()
	dist, err := p.fetch(ctx, reqURL)
	if err != nil {
		p.metrics.RecordFetch("error", time.Since(start))
		return nil, err
	}
	p.metrics.RecordFetch("success", time.Since(start))
	return dist, nil
}

func (p *Poller) fetch(ctx context.Context, reqURL string) (Distribution, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.NewFetchError(reqURL, 0, err)
	}
	req.Header.Set("User-Agent", uarand.GetRandom())
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewFetchError(reqURL, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewFetchError(reqURL, resp.StatusCode, fmt.Errorf("unexpected status"))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewFetchError(reqURL, resp.StatusCode, err)
	}

	var dist Distribution
	if err := json.Unmarshal(body, &dist); err != nil {
		return nil, errors.NewFetchError(reqURL, resp.StatusCode, fmt.Errorf("malformed distribution: %w", err))
	}
	return dist, nil
}

// CheckOne fetches the current distribution of one exam, persists it as the
// new snapshot and reports whether the total grade count changed against
// the previous snapshot. Without a prior snapshot NewResult is false.
func (p *Poller) CheckOne(ctx context.Context, exam Exam) (Change, error) {
	old, err := p.store.LoadSnapshot(exam)
	if err != nil {
		return Change{}, err
	}

	current, err := p.FetchDistribution(ctx, exam)
	if err != nil {
		return Change{}, err
	}

	// The snapshot is written unconditionally so the next cycle diffs
	// against the freshest data even when nothing changed.
	if err := p.store.SaveSnapshot(exam, current); err != nil {
		return Change{}, err
	}

	return Change{
		Exam:      exam,
		Old:       old,
		New:       current,
		NewResult: old != nil && current.TotalCount() != old.TotalCount(),
	}, nil
}

// CheckAll checks every exam any chat is subscribed to and returns the
// changed exams per chat. The global exam set is deduplicated by key
// before fetching so an exam shared by many chats is fetched once.
// Failures are isolated per exam: one unreachable exam is logged and
// skipped without suppressing results for the others.
func (p *Poller) CheckAll(ctx context.Context) map[int64][]Change {
	subscribers := p.store.LoadSubscribers()

	var distinct []Exam
	seen := make(map[string]bool)
	for _, exams := range subscribers {
		for _, exam := range exams {
			if !seen[exam.Key()] {
				seen[exam.Key()] = true
				distinct = append(distinct, exam)
			}
		}
	}

	// Each goroutine writes its own slot; fetch errors stay local.
	results := make([]*Change, len(distinct))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i, exam := range distinct {
		g.Go(func() error {
			change, err := p.CheckOne(gctx, exam)
			if err != nil {
				p.log.WithError(err).WithField("exam", exam.Key()).
					Warn("Exam check failed, skipping this cycle")
				return nil
			}
			results[i] = &change
			return nil
		})
	}
	_ = g.Wait()

	changedByKey := make(map[string]Change)
	for _, change := range results {
		if change != nil && change.NewResult {
			changedByKey[change.Exam.Key()] = *change
			if p.metrics != nil {
				p.metrics.PollerChangesTotal.Inc()
			}
		}
	}

	perChat := make(map[int64][]Change)
	for chatID, exams := range subscribers {
		var own []Change
		for _, exam := range exams {
			if change, ok := changedByKey[exam.Key()]; ok {
				own = append(own, change)
			}
		}
		if len(own) > 0 {
			perChat[chatID] = own
		}
	}
	return perChat
}
