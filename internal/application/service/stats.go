package service

type LookupSource string

const (
	SourceCache LookupSource = "cache"
	SourceStore LookupSource = "store"
)

type LookupStats struct {
	Source  LookupSource
	CacheMs float64
	StoreMs float64
}

type AppendStats struct {
	StoreWriteMs float64
}
