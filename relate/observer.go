package relate

import (
	"go.uber.org/zap"

	"github.com/teranos/fundlink/logger"
	"github.com/teranos/fundlink/rules"
)

// Relationship names the kind of target a dataset was compared with.
type Relationship string

const (
	RelationshipProgram Relationship = "program"
	RelationshipProject Relationship = "project"
	RelationshipGrant   Relationship = "grant"
)

// Event describes one rule that fired for one dataset/target pair.
type Event struct {
	Relationship Relationship
	Rule         rules.ID
	Dataset      string
	TargetID     string
	// Evidence is the rule's payload: an evidence.Set, a []string of PI
	// names, or nil for boolean-only rules.
	Evidence interface{}
	// Similarity is set for the description rule only.
	Similarity float64
}

// Observer receives match events. Evaluate may call Observe from several
// goroutines at once.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// Observe calls f(e).
func (f ObserverFunc) Observe(e Event) { f(e) }

type nopObserver struct{}

func (nopObserver) Observe(Event) {}

type fanout []Observer

func (f fanout) Observe(e Event) {
	for _, o := range f {
		o.Observe(e)
	}
}

// Fanout delivers each event to every non-nil observer in order.
func Fanout(observers ...Observer) Observer {
	var out fanout
	for _, o := range observers {
		if o != nil {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return nopObserver{}
	}
	return out
}

// NewLogObserver logs every match at info level.
func NewLogObserver(log *zap.SugaredLogger) Observer {
	return ObserverFunc(func(e Event) {
		fields := []interface{}{
			logger.FieldRelationship, e.Relationship,
			logger.FieldRule, e.Rule,
			logger.FieldDataset, e.Dataset,
			targetField(e.Relationship), e.TargetID,
		}
		if e.Evidence != nil {
			fields = append(fields, logger.FieldEvidence, e.Evidence)
		}
		if e.Rule == rules.ProjectDescription {
			fields = append(fields, logger.FieldSimilarity, e.Similarity)
		}
		log.Infow("Match found", fields...)
	})
}

func targetField(r Relationship) string {
	switch r {
	case RelationshipProgram:
		return logger.FieldProgramID
	case RelationshipProject:
		return logger.FieldProjectID
	default:
		return logger.FieldGrantID
	}
}
