package observability

// Metrics is what the ingest path and the HTTP API report to.
type Metrics interface {
	ObserveInvocation(outcome string, durMs float64)
	ObserveFetch(ok bool, durMs float64)
	IncSegmentFailure(kind string)
	IncPersisted(ok bool)
	ObserveLookup(source string, cacheMs, dbMs float64)
	ObserveUpsert(dbWriteMs float64)
	ObserveHTTP(method, route string, status int, durMs float64)
	IncCacheHit()
	IncCacheMiss()
}

// Invocation outcomes.
const (
	OutcomeProcessed   = "processed"
	OutcomeRejected    = "rejected"
	OutcomeParseFailed = "parse_failed"
	OutcomePartial     = "partial"
)

type Noop struct{}

func NewNoop() Noop { return Noop{} }

func (Noop) ObserveInvocation(string, float64)        {}
func (Noop) ObserveFetch(bool, float64)               {}
func (Noop) IncSegmentFailure(string)                 {}
func (Noop) IncPersisted(bool)                        {}
func (Noop) ObserveLookup(string, float64, float64)   {}
func (Noop) ObserveUpsert(float64)                    {}
func (Noop) ObserveHTTP(string, string, int, float64) {}
func (Noop) IncCacheHit()                             {}
func (Noop) IncCacheMiss()                            {}
