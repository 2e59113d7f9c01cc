// Package relate evaluates every dataset against every program, project and
// grant and assembles one relationship record per pair.
package relate

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/teranos/fundlink/entity"
	"github.com/teranos/fundlink/errors"
	"github.com/teranos/fundlink/logger"
	"github.com/teranos/fundlink/normalize"
	"github.com/teranos/fundlink/rules"
	"github.com/teranos/fundlink/similarity"
)

// ErrorPolicy decides what a similarity provider failure does to a pass.
type ErrorPolicy string

const (
	// AbortOnError fails the whole pass on the first provider error.
	AbortOnError ErrorPolicy = "abort"
	// RecordNo records the affected pair as "no" and continues.
	RecordNo ErrorPolicy = "record_no"
)

// Config controls one evaluation pass.
type Config struct {
	// Semantic enables the description similarity rule.
	Semantic  bool
	Threshold float64

	FundingAccumulation rules.Accumulation
	OnSimilarityError   ErrorPolicy

	// Workers bounds how many datasets are evaluated concurrently.
	Workers int
}

// DefaultConfig returns the default behavior: semantic matching off,
// last-match-wins funding evidence, abort on provider errors, one worker.
func DefaultConfig() Config {
	return Config{
		Semantic:            false,
		Threshold:           similarity.DefaultThreshold,
		FundingAccumulation: rules.LastMatchWins,
		OnSimilarityError:   AbortOnError,
		Workers:             1,
	}
}

// Evaluator runs evaluation passes. It is safe for concurrent use when its
// similarity port and observer are.
type Evaluator struct {
	cfg      Config
	port     similarity.Port
	observer Observer
	log      *zap.SugaredLogger
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithSimilarity sets the port used by the description rule.
func WithSimilarity(port similarity.Port) Option {
	return func(e *Evaluator) { e.port = port }
}

// WithObserver sets the match event observer.
func WithObserver(o Observer) Option {
	return func(e *Evaluator) { e.observer = o }
}

// WithLogger sets the logger for progress and provider failures.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(e *Evaluator) { e.log = log }
}

// New validates cfg and returns an Evaluator.
func New(cfg Config, opts ...Option) (*Evaluator, error) {
	e := &Evaluator{
		cfg:      cfg,
		observer: nopObserver{},
		log:      zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.cfg.Workers < 1 {
		e.cfg.Workers = 1
	}
	if e.cfg.FundingAccumulation == "" {
		e.cfg.FundingAccumulation = rules.LastMatchWins
	}
	if !e.cfg.FundingAccumulation.Valid() {
		return nil, errors.Newf("unknown funding accumulation %q", e.cfg.FundingAccumulation)
	}
	switch e.cfg.OnSimilarityError {
	case "":
		e.cfg.OnSimilarityError = AbortOnError
	case AbortOnError, RecordNo:
	default:
		return nil, errors.Newf("unknown similarity error policy %q", e.cfg.OnSimilarityError)
	}
	if e.cfg.Semantic && e.port == nil {
		return nil, errors.New("semantic matching enabled without a similarity provider")
	}
	if e.observer == nil {
		e.observer = nopObserver{}
	}
	return e, nil
}

// normalized holds every entity of a pass in comparable form.
type normalized struct {
	datasets []entity.Dataset
	programs []entity.Program
	projects []entity.Project
	grants   []entity.Grant
}

func normalizeTables(t entity.Tables) normalized {
	n := normalized{
		datasets: make([]entity.Dataset, len(t.Datasets)),
		programs: make([]entity.Program, len(t.Programs)),
		projects: make([]entity.Project, len(t.Projects)),
		grants:   make([]entity.Grant, len(t.Grants)),
	}
	for i, r := range t.Datasets {
		n.datasets[i] = normalize.Dataset(r)
	}
	for i, r := range t.Programs {
		n.programs[i] = normalize.Program(r)
	}
	for i, r := range t.Projects {
		n.projects[i] = normalize.Project(r)
	}
	for i, r := range t.Grants {
		n.grants[i] = normalize.Grant(r)
	}
	return n
}

// partition is the output of one dataset.
type partition struct {
	programs []ProgramRelationship
	projects []ProjectRelationship
	grants   []GrantRelationship
}

// Evaluate relates every dataset to every program, project and grant.
// Records are ordered by dataset, then by target, as in the input tables.
func (e *Evaluator) Evaluate(ctx context.Context, tables entity.Tables) (*Result, error) {
	start := time.Now()
	n := normalizeTables(tables)
	log := e.log.With(logger.FieldsFromContext(ctx)...)

	log.Infow("Evaluation started",
		"datasets", len(n.datasets),
		"programs", len(n.programs),
		"projects", len(n.projects),
		"grants", len(n.grants),
		logger.FieldWorkers, e.cfg.Workers,
		"semantic", e.cfg.Semantic,
	)

	parts := make([]partition, len(n.datasets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for i := range n.datasets {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := e.evaluateDataset(gctx, &n.datasets[i], &n)
			if err != nil {
				return errors.Wrapf(err, "dataset %d (%q)", i, n.datasets[i].Title)
			}
			parts[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{
		Programs: make([]ProgramRelationship, 0, len(n.datasets)*len(n.programs)),
		Projects: make([]ProjectRelationship, 0, len(n.datasets)*len(n.projects)),
		Grants:   make([]GrantRelationship, 0, len(n.datasets)*len(n.grants)),
	}
	for _, p := range parts {
		result.Programs = append(result.Programs, p.programs...)
		result.Projects = append(result.Projects, p.projects...)
		result.Grants = append(result.Grants, p.grants...)
	}

	log.Infow("Evaluation complete",
		"program_records", len(result.Programs),
		"project_records", len(result.Projects),
		"grant_records", len(result.Grants),
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
	)
	return result, nil
}

func (e *Evaluator) evaluateDataset(ctx context.Context, d *entity.Dataset, n *normalized) (partition, error) {
	var out partition

	out.programs = make([]ProgramRelationship, 0, len(n.programs))
	for i := range n.programs {
		out.programs = append(out.programs, e.relateProgram(d, &n.programs[i]))
	}

	out.projects = make([]ProjectRelationship, 0, len(n.projects))
	desc := &descriptionEmbedding{}
	for i := range n.projects {
		rec, err := e.relateProject(ctx, d, &n.projects[i], desc)
		if err != nil {
			return partition{}, err
		}
		out.projects = append(out.projects, rec)
	}

	out.grants = make([]GrantRelationship, 0, len(n.grants))
	for i := range n.grants {
		out.grants = append(out.grants, e.relateGrant(d, &n.grants[i]))
	}

	return out, nil
}

func (e *Evaluator) relateProgram(d *entity.Dataset, p *entity.Program) ProgramRelationship {
	funding := rules.FundingSource(d, p, e.cfg.FundingAccumulation)
	names := rules.NameOrAcronym(d, p)
	pis := rules.ProgramPIs(d, p)

	rec := ProgramRelationship{
		Dataset:         d.Title,
		ProgramName:     p.DisplayName,
		ProgramID:       p.ID,
		FundingSource:   Flag(!funding.Empty()),
		NameAcronym:     Flag(!names.Empty()),
		PI:              Flag(len(pis) > 0),
		FundingEvidence: funding,
		NameEvidence:    names,
		PIEvidence:      pis,
	}

	if rec.FundingSource {
		e.emit(RelationshipProgram, rules.ProgramFunding, d, p.ID, funding, 0)
	}
	if rec.NameAcronym {
		e.emit(RelationshipProgram, rules.ProgramNameAcronym, d, p.ID, names, 0)
	}
	if rec.PI {
		e.emit(RelationshipProgram, rules.ProgramPI, d, p.ID, pis, 0)
	}
	return rec
}

// descriptionEmbedding embeds a dataset description at most once and only
// when a project actually needs it. A failed embedding is kept as err and
// reported for every later project of the same dataset.
type descriptionEmbedding struct {
	vec  []float32
	err  error
	done bool
}

func (e *Evaluator) relateProject(ctx context.Context, d *entity.Dataset, p *entity.Project, desc *descriptionEmbedding) (ProjectRelationship, error) {
	rec := ProjectRelationship{
		Dataset:   d.Title,
		ProgramID: p.ProgramID,
		ProjectID: p.ID,
		Org:       Flag(rules.ProjectOrgMatches(d, p)),
	}
	if rec.Org {
		e.emit(RelationshipProject, rules.ProjectOrg, d, p.ID, nil, 0)
	}

	if !e.cfg.Semantic || p.AbstractText == "" {
		return rec, nil
	}

	matched, sim, err := e.describeSimilarity(ctx, d, p, desc)
	if err != nil {
		err = errors.WrapSimilarity(err, "project "+p.ID)
		if e.cfg.OnSimilarityError == AbortOnError {
			return ProjectRelationship{}, err
		}
		e.log.Warnw("Similarity failed, recording no match",
			logger.FieldDataset, d.Title,
			logger.FieldProjectID, p.ID,
			logger.FieldError, err,
		)
		return rec, nil
	}

	rec.Similarity = &sim
	rec.Description = Flag(matched)
	if matched {
		e.emit(RelationshipProject, rules.ProjectDescription, d, p.ID, nil, sim)
	}
	return rec, nil
}

func (e *Evaluator) describeSimilarity(ctx context.Context, d *entity.Dataset, p *entity.Project, desc *descriptionEmbedding) (bool, float64, error) {
	if !desc.done {
		desc.vec, desc.err = e.port.Embed(ctx, d.Description)
		desc.done = true
	}
	if desc.err != nil {
		return false, 0, errors.Wrap(desc.err, "embed dataset description")
	}
	return rules.DescriptionSimilarity(ctx, e.port, desc.vec, p, e.cfg.Threshold)
}

func (e *Evaluator) relateGrant(d *entity.Dataset, g *entity.Grant) GrantRelationship {
	pis := rules.GrantPIs(d, g)
	rec := GrantRelationship{
		Dataset:    d.Title,
		GrantID:    g.ID,
		ProjectID:  g.ProjectID,
		PI:         Flag(len(pis) > 0),
		Funding:    Flag(rules.GrantFundingMatches(d, g)),
		Org:        Flag(rules.GrantOrgMatches(d, g)),
		PIEvidence: pis,
	}

	if rec.PI {
		e.emit(RelationshipGrant, rules.GrantPI, d, g.ID, pis, 0)
	}
	if rec.Funding {
		e.emit(RelationshipGrant, rules.GrantFunding, d, g.ID, nil, 0)
	}
	if rec.Org {
		e.emit(RelationshipGrant, rules.GrantOrg, d, g.ID, nil, 0)
	}
	return rec
}

func (e *Evaluator) emit(rel Relationship, rule rules.ID, d *entity.Dataset, targetID string, ev interface{}, sim float64) {
	e.observer.Observe(Event{
		Relationship: rel,
		Rule:         rule,
		Dataset:      d.Title,
		TargetID:     targetID,
		Evidence:     ev,
		Similarity:   sim,
	})
}
