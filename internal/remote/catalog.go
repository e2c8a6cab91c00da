// Package remote holds the collaborators the engine talks to for lesson
// material, telemetry and speed advice, with local and LLM-backed
// implementations.
package remote

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/abhisek/speedlearn/internal/cache"
	"github.com/abhisek/speedlearn/internal/content"
	"github.com/abhisek/speedlearn/internal/speed"
)

// ErrLessonNotFound is returned for a lesson id the catalog does not hold.
var ErrLessonNotFound = errors.New("lesson not found")

// Catalog is an in-memory LessonSource. NewCatalog seeds it with a small
// set of science lessons.
type Catalog struct {
	mu      sync.RWMutex
	lessons map[string]content.Source
}

// NewCatalog returns a catalog holding the built-in lessons.
func NewCatalog() *Catalog {
	c := &Catalog{lessons: make(map[string]content.Source, len(sampleLessons))}
	for _, l := range sampleLessons {
		c.lessons[l.LessonID] = l
	}
	return c
}

// Add stores or replaces a lesson.
func (c *Catalog) Add(src content.Source) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lessons[src.LessonID] = src
}

// Get returns a lesson by id.
func (c *Catalog) Get(lessonID string) (content.Source, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	src, ok := c.lessons[lessonID]
	return src, ok
}

// IDs returns the catalog's lesson ids in sorted order.
func (c *Catalog) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.lessons))
	for id := range c.lessons {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// GetAdaptiveLesson implements cache.LessonSource. The catalog serves the
// same material at every speed and leaves UI knobs to the speed profile.
func (c *Catalog) GetAdaptiveLesson(ctx context.Context, lessonID, _ string, s speed.Speed) (*cache.Lesson, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !speed.Valid(s) {
		return nil, fmt.Errorf("catalog: speed %d out of range", s)
	}
	src, ok := c.Get(lessonID)
	if !ok {
		return nil, fmt.Errorf("catalog: %w: %q", ErrLessonNotFound, lessonID)
	}
	src.KeyTerms = slices.Clone(src.KeyTerms)
	return &cache.Lesson{Source: src}, nil
}

var sampleLessons = []content.Source{
	{
		LessonID: "photosynthesis",
		Title:    "How Plants Make Food",
		Text: "Plants make their own food through a process called photosynthesis. " +
			"Inside each leaf are tiny structures called chloroplasts that contain a green pigment named chlorophyll. " +
			"Chlorophyll captures energy from sunlight.\n\n" +
			"The plant takes in carbon dioxide from the air through small openings called stomata. " +
			"Roots absorb water from the soil and carry it up to the leaves. " +
			"Using the captured light energy, the plant combines carbon dioxide and water to make glucose, a simple sugar.\n\n" +
			"Oxygen is released as a byproduct of photosynthesis. " +
			"Animals, including people, breathe this oxygen. " +
			"The glucose gives the plant energy to grow and is stored as starch for later use.",
		KeyTerms: []string{"photosynthesis", "chlorophyll", "stomata", "glucose"},
	},
	{
		LessonID: "water-cycle",
		Title:    "The Water Cycle",
		Text: "Water on Earth moves in a continuous loop called the water cycle. " +
			"Heat from the sun causes water in oceans, lakes and rivers to evaporate and rise as water vapor.\n\n" +
			"As the vapor rises it cools and condenses into tiny droplets that form clouds. " +
			"When the droplets join together and become heavy, they fall back to the ground as precipitation such as rain, snow or hail.\n\n" +
			"Some precipitation soaks into the ground and becomes groundwater. " +
			"The rest flows over the land as runoff into streams and rivers that lead back to the ocean, where the cycle begins again.",
		KeyTerms: []string{"evaporation", "condensation", "precipitation", "runoff"},
	},
	{
		LessonID: "simple-machines",
		Title:    "Simple Machines",
		Text: "A simple machine is a device that makes work easier by changing the size or direction of a force. " +
			"There are six classic simple machines: the lever, the wheel and axle, the pulley, the inclined plane, the wedge and the screw.\n\n" +
			"A lever is a rigid bar that turns on a fixed point called a fulcrum. " +
			"Pushing down on one end of a seesaw lifts the other end. " +
			"A pulley uses a wheel and a rope to lift loads, and several pulleys together reduce the force needed.\n\n" +
			"An inclined plane is a sloped surface, like a ramp, that lets you raise an object with less force over a longer distance. " +
			"The trade-off in every simple machine is that less force usually means more distance.",
		KeyTerms: []string{"lever", "fulcrum", "pulley", "inclined plane"},
	},
	{
		LessonID: "states-of-matter",
		Title:    "States of Matter",
		Text: "Matter is anything that has mass and takes up space. " +
			"It commonly exists in three states: solid, liquid and gas.\n\n" +
			"In a solid, particles are packed tightly and vibrate in place, so solids keep their shape. " +
			"In a liquid, particles are close together but can slide past each other, so liquids take the shape of their container. " +
			"In a gas, particles move quickly and spread out to fill any space.\n\n" +
			"Adding or removing heat changes the state of matter. " +
			"Melting turns a solid into a liquid, and evaporation turns a liquid into a gas. " +
			"Freezing and condensation reverse these changes.",
		KeyTerms: []string{"solid", "liquid", "gas", "particles"},
	},
	{
		LessonID: "solar-system",
		Title:    "Our Solar System",
		Text: "The solar system is made up of the sun and everything that orbits it. " +
			"Eight planets travel around the sun along paths called orbits, held in place by gravity.\n\n" +
			"The four inner planets, Mercury, Venus, Earth and Mars, are small and rocky. " +
			"The four outer planets, Jupiter, Saturn, Uranus and Neptune, are much larger and made mostly of gas and ice.\n\n" +
			"Between Mars and Jupiter lies the asteroid belt, a region filled with rocky objects. " +
			"Moons orbit many of the planets, and comets with icy tails sweep in from the far edges of the solar system.",
		KeyTerms: []string{"orbit", "gravity", "planet", "asteroid belt"},
	},
}
