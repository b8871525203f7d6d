// Package scorer computes pairwise compatibility between two profiles.
//
// Every component and the weighted total are integers in [0,100]. The same
// weighting is used when a request is created and when candidates are ranked.
package scorer

import (
	"context"
	"math"
	"slices"
	"strings"

	profileModel "github.com/festy23/teammatch/internal/profile/model"
)

// Component weights of the overall score.
const (
	WeightSkill      = 0.30
	WeightExperience = 0.20
	WeightLocation   = 0.15
	WeightProject    = 0.15
	WeightEmbedding  = 0.20
)

// Neutral is the score of a component that cannot be computed.
const Neutral = 50

// Similarity compares two embedding vectors. embedding.Oracle satisfies it.
type Similarity interface {
	Similarity(ctx context.Context, a, b []float32) (float64, error)
}

// Breakdown holds the per-component scores.
type Breakdown struct {
	Skill      int `gorm:"column:skill;not null;default:0"      json:"skill"`
	Experience int `gorm:"column:experience;not null;default:0" json:"experience"`
	Location   int `gorm:"column:location;not null;default:0"   json:"location"`
	Embedding  int `gorm:"column:embedding;not null;default:0"  json:"embedding"`
	Project    int `gorm:"column:project;not null;default:0"    json:"project"`
}

// Overall returns the weighted total of b.
func (b Breakdown) Overall() int {
	return round(WeightSkill*float64(b.Skill) +
		WeightExperience*float64(b.Experience) +
		WeightLocation*float64(b.Location) +
		WeightProject*float64(b.Project) +
		WeightEmbedding*float64(b.Embedding))
}

// Result is the compatibility of candidate B as seen by A.
type Result struct {
	Score               int       `json:"score"`
	Breakdown           Breakdown `json:"breakdown"`
	CommonSkills        []string  `json:"common_skills"`
	ComplementarySkills []string  `json:"complementary_skills"`
	// EmbeddingFailed is set when the similarity call errored and the
	// embedding component fell back to Neutral.
	EmbeddingFailed bool `json:"-"`
}

// Scorer scores profile pairs. A nil similarity makes the embedding
// component always Neutral.
type Scorer struct {
	sim Similarity
}

// New creates a scorer consulting sim for embedding similarity.
func New(sim Similarity) *Scorer {
	return &Scorer{sim: sim}
}

// WithoutEmbedding returns a scorer that never calls the similarity oracle.
func (s *Scorer) WithoutEmbedding() *Scorer {
	return &Scorer{}
}

// Score computes the compatibility of b for a. eventTechs are the
// technologies of the event the pair would work on, if any.
func (s *Scorer) Score(ctx context.Context, a, b *profileModel.Profile, eventTechs []string) Result {
	common, complementary := SkillSets(a.Skills, b.Skills)
	embedding, failed := s.embeddingScore(ctx, a.Embedding, b.Embedding)

	breakdown := Breakdown{
		Skill:      SkillScore(a.Skills, b.Skills),
		Experience: ExperienceScore(a.TotalExperienceYears(), b.TotalExperienceYears()),
		Location:   LocationScore(a.City, a.Country, b.City, b.Country),
		Embedding:  embedding,
		Project:    ProjectScore(a.Technologies, b.Technologies, eventTechs),
	}
	return Result{
		Score:               breakdown.Overall(),
		Breakdown:           breakdown,
		CommonSkills:        common,
		ComplementarySkills: complementary,
		EmbeddingFailed:     failed,
	}
}

func (s *Scorer) embeddingScore(ctx context.Context, a, b []float32) (int, bool) {
	if s.sim == nil || len(a) == 0 || len(b) == 0 {
		return Neutral, false
	}
	sim, err := s.sim.Similarity(ctx, a, b)
	if err != nil {
		return Neutral, true
	}
	return round(math.Max(0, math.Min(1, sim)) * 100), false
}

// SkillScore blends the Jaccard index j of the two skill sets toward a
// complementarity sweet spot: min(1, j + (1-|0.3-j|)*0.5) * 100.
func SkillScore(a, b []string) int {
	j := jaccard(a, b)
	return round(math.Min(1, j+(1-math.Abs(0.3-j))*0.5) * 100)
}

// ExperienceScore rates the gap between two total experience durations in years.
func ExperienceScore(yearsA, yearsB float64) int {
	d := math.Abs(yearsA - yearsB)
	switch {
	case d <= 2:
		return 90
	case d <= 4:
		return 70
	case d <= 6:
		return 50
	default:
		return 30
	}
}

// LocationScore compares two locations case-insensitively.
func LocationScore(cityA, countryA, cityB, countryB string) int {
	cityA, countryA = normalize(cityA), normalize(countryA)
	cityB, countryB = normalize(cityB), normalize(countryB)

	sameCity := cityA != "" && cityA == cityB
	switch {
	case countryA != "" && countryB != "":
		if countryA != countryB {
			return 25
		}
		if sameCity {
			return 100
		}
		return 70
	case sameCity:
		return 100
	default:
		return Neutral
	}
}

// ProjectScore is the overlap of candidate technologies with the event's
// technologies, or with the requester's when the event lists none.
func ProjectScore(techA, techB, eventTechs []string) int {
	if len(normalizeSet(eventTechs)) > 0 {
		return round(jaccard(techB, eventTechs) * 100)
	}
	if len(normalizeSet(techA)) > 0 || len(normalizeSet(techB)) > 0 {
		return round(jaccard(techA, techB) * 100)
	}
	return Neutral
}

// SkillSets returns the skills a and b share and the skills of b that a
// lacks, both lower-cased and sorted.
func SkillSets(a, b []string) (common, complementary []string) {
	setA := normalizeSet(a)
	common, complementary = []string{}, []string{}
	for s := range normalizeSet(b) {
		if _, ok := setA[s]; ok {
			common = append(common, s)
		} else {
			complementary = append(complementary, s)
		}
	}
	slices.Sort(common)
	slices.Sort(complementary)
	return common, complementary
}

func jaccard(a, b []string) float64 {
	setA, setB := normalizeSet(a), normalizeSet(b)
	union := len(setA)
	inter := 0
	for s := range setB {
		if _, ok := setA[s]; ok {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func normalizeSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		if n := normalize(item); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// round rounds half away from zero and clamps to [0,100].
func round(v float64) int {
	return int(math.Max(0, math.Min(100, math.Round(v))))
}
