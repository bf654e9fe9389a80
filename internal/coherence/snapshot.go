package coherence

import (
	"sort"

	"github.com/coherentnotebook/entropy/internal/clustering"
	"github.com/coherentnotebook/entropy/internal/notebook"
	"github.com/coherentnotebook/entropy/internal/refgraph"
	"github.com/coherentnotebook/entropy/internal/tfidf"
)

// Snapshot is the per-notebook in-memory coherence state: one clustering
// of entries by TF-IDF similarity, the corpus statistics and vectors that
// produced it, the reference graph, and the causal position passed to the
// most recent Rebuild (AddEntry does not change it).
type Snapshot struct {
	Clusters       map[clustering.ClusterID]*clustering.Cluster
	ClusterVectors map[clustering.ClusterID]tfidf.Vector
	EntryVectors   map[notebook.EntryID]tfidf.Vector
	// EntryCluster tracks which cluster each tracked entry currently
	// belongs to; the invariant that every tracked entry appears in
	// exactly one cluster is maintained here.
	EntryCluster map[notebook.EntryID]clustering.ClusterID
	// EntrySequence tracks the causal sequence at which each entry was
	// admitted, used by the catalog generator's stability computation.
	EntrySequence map[notebook.EntryID]uint64

	CorpusStats   *tfidf.CorpusStats
	ReferenceGraph *refgraph.Graph
	Timestamp     notebook.CausalPosition
	Config        clustering.Config
	NextClusterID clustering.ClusterID
}

// New returns an empty snapshot with the given clustering configuration.
func New(cfg clustering.Config) *Snapshot {
	return &Snapshot{
		Clusters:       make(map[clustering.ClusterID]*clustering.Cluster),
		ClusterVectors: make(map[clustering.ClusterID]tfidf.Vector),
		EntryVectors:   make(map[notebook.EntryID]tfidf.Vector),
		EntryCluster:   make(map[notebook.EntryID]clustering.ClusterID),
		EntrySequence:  make(map[notebook.EntryID]uint64),
		CorpusStats:    tfidf.NewCorpusStats(),
		ReferenceGraph: refgraph.New(),
		Config:         cfg,
		NextClusterID:  1,
	}
}

// EntryCount returns the number of tracked entries, which per invariant
// always equals CorpusStats.DocumentCount.
func (s *Snapshot) EntryCount() int {
	return len(s.EntryVectors)
}

// AddEntry implements component design 4.4: records references, updates
// corpus statistics, builds the entry's TF-IDF vector, runs incremental
// cluster assignment, and returns the assigned cluster id.
func (s *Snapshot) AddEntry(entry *notebook.Entry) clustering.ClusterID {
	s.ReferenceGraph.AddEntryReferences(entry.ID, entry.References)

	tokens := tfidf.TokenizeEntryContent(entry.Content, entry.ContentType)
	s.CorpusStats.AddDocument(tokens)

	vec := tfidf.BuildVector(tokens, s.CorpusStats)
	s.EntryVectors[entry.ID] = vec

	clusterID, matched := clustering.AssignToCluster(vec, entry.Topic, s.Clusters, s.ClusterVectors, s.Config)
	if matched {
		c := s.Clusters[clusterID]
		newVec := clustering.AppendToCluster(c, entry.ID, s.EntryVectors, s.ReferenceGraph)
		s.ClusterVectors[clusterID] = newVec
	} else {
		clusterID = s.NextClusterID
		s.NextClusterID++
		s.Clusters[clusterID] = clustering.CreateSingleton(clusterID, entry.ID, vec)
		s.ClusterVectors[clusterID] = vec.Clone()
	}

	s.EntryCluster[entry.ID] = clusterID
	s.EntrySequence[entry.ID] = entry.CausalPosition.Sequence
	return clusterID
}

// Rebuild clears all state and performs a full bulk clustering of
// entries, in input order, at the given timestamp. next_cluster_id is set
// to one past the highest allocated cluster id.
func (s *Snapshot) Rebuild(entries []*notebook.Entry, timestamp notebook.CausalPosition) {
	s.Clusters = make(map[clustering.ClusterID]*clustering.Cluster)
	s.ClusterVectors = make(map[clustering.ClusterID]tfidf.Vector)
	s.EntryVectors = make(map[notebook.EntryID]tfidf.Vector)
	s.EntryCluster = make(map[notebook.EntryID]clustering.ClusterID)
	s.EntrySequence = make(map[notebook.EntryID]uint64)
	s.CorpusStats = tfidf.NewCorpusStats()
	s.ReferenceGraph = refgraph.New()

	order := make([]notebook.EntryID, 0, len(entries))
	for _, e := range entries {
		s.ReferenceGraph.AddEntryReferences(e.ID, e.References)
		tokens := tfidf.TokenizeEntryContent(e.Content, e.ContentType)
		s.CorpusStats.AddDocument(tokens)
		order = append(order, e.ID)
		s.EntrySequence[e.ID] = e.CausalPosition.Sequence
	}
	for _, e := range entries {
		tokens := tfidf.TokenizeEntryContent(e.Content, e.ContentType)
		s.EntryVectors[e.ID] = tfidf.BuildVector(tokens, s.CorpusStats)
	}

	result := clustering.ClusterEntries(order, s.EntryVectors, s.ReferenceGraph, s.Config)
	s.Clusters = result.Clusters
	s.ClusterVectors = result.ClusterVectors
	s.NextClusterID = result.NextClusterID

	for clusterID, c := range s.Clusters {
		for _, id := range c.EntryIDs {
			s.EntryCluster[id] = clusterID
		}
	}

	s.Timestamp = timestamp
}

// Clone returns a deep copy, used by compute_cost_preview to evaluate a
// tentative write without mutating the committed snapshot.
func (s *Snapshot) Clone() *Snapshot {
	clone := &Snapshot{
		Clusters:       make(map[clustering.ClusterID]*clustering.Cluster, len(s.Clusters)),
		ClusterVectors: make(map[clustering.ClusterID]tfidf.Vector, len(s.ClusterVectors)),
		EntryVectors:   make(map[notebook.EntryID]tfidf.Vector, len(s.EntryVectors)),
		EntryCluster:   make(map[notebook.EntryID]clustering.ClusterID, len(s.EntryCluster)),
		EntrySequence:  make(map[notebook.EntryID]uint64, len(s.EntrySequence)),
		CorpusStats:    s.CorpusStats.Clone(),
		ReferenceGraph: s.ReferenceGraph.Clone(),
		Timestamp:      s.Timestamp,
		Config:         s.Config,
		NextClusterID:  s.NextClusterID,
	}
	for id, c := range s.Clusters {
		cc := *c
		cc.TopicKeywords = append([]string(nil), c.TopicKeywords...)
		cc.EntryIDs = append([]notebook.EntryID(nil), c.EntryIDs...)
		clone.Clusters[id] = &cc
	}
	for id, v := range s.ClusterVectors {
		clone.ClusterVectors[id] = v.Clone()
	}
	for id, v := range s.EntryVectors {
		clone.EntryVectors[id] = v.Clone()
	}
	for id, c := range s.EntryCluster {
		clone.EntryCluster[id] = c
	}
	for id, seq := range s.EntrySequence {
		clone.EntrySequence[id] = seq
	}
	return clone
}

// Stats is the derived-statistics bundle described in component design
// 4.4.
type Stats struct {
	ClusterCount    int
	EntryCount      int
	AvgClusterSize  float64
	MaxClusterSize  int
	MinClusterSize  int
	AvgDensity      float64
	SingletonCount  int
}

// ComputeStats derives the Stats bundle from the current clustering.
func (s *Snapshot) ComputeStats() Stats {
	st := Stats{ClusterCount: len(s.Clusters), EntryCount: s.EntryCount()}
	if len(s.Clusters) == 0 {
		return st
	}

	var totalSize int
	var densitySum float64
	minSize := -1
	maxSize := 0
	singletons := 0

	for _, c := range s.Clusters {
		size := len(c.EntryIDs)
		totalSize += size
		densitySum += c.ReferenceDensity
		if size == 1 {
			singletons++
		}
		if minSize == -1 || size < minSize {
			minSize = size
		}
		if size > maxSize {
			maxSize = size
		}
	}

	st.AvgClusterSize = float64(totalSize) / float64(len(s.Clusters))
	st.MinClusterSize = minSize
	st.MaxClusterSize = maxSize
	st.AvgDensity = densitySum / float64(len(s.Clusters))
	st.SingletonCount = singletons
	return st
}

// AverageDensity returns the unweighted mean reference density across
// clusters.
func (s *Snapshot) AverageDensity() float64 {
	if len(s.Clusters) == 0 {
		return 0
	}
	var sum float64
	for _, c := range s.Clusters {
		sum += c.ReferenceDensity
	}
	return sum / float64(len(s.Clusters))
}

// WeightedAverageDensity returns the mean reference density weighted by
// cluster size.
func (s *Snapshot) WeightedAverageDensity() float64 {
	var weightedSum float64
	var totalEntries int
	for _, c := range s.Clusters {
		weightedSum += c.ReferenceDensity * float64(len(c.EntryIDs))
		totalEntries += len(c.EntryIDs)
	}
	if totalEntries == 0 {
		return 0
	}
	return weightedSum / float64(totalEntries)
}

// SortedClusterIDs returns cluster ids in ascending order, for
// deterministic iteration by callers (catalog generation, tests).
func (s *Snapshot) SortedClusterIDs() []clustering.ClusterID {
	ids := make([]clustering.ClusterID, 0, len(s.Clusters))
	for id := range s.Clusters {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
