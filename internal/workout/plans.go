package workout

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	log "github.com/sirupsen/logrus"
)

// WorkoutPlan is a read-only catalog entry, sessions reference it by id.
type WorkoutPlan struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"durationMinutes"`
	Difficulty      string `json:"difficulty"`
}

type PlansCatalog struct {
	plans     []WorkoutPlan
	plansByID map[int]WorkoutPlan
}

func NewPlansCatalog(plansCsvReader *csv.Reader) (*PlansCatalog, error) {
	catalog := &PlansCatalog{
		plansByID: make(map[int]WorkoutPlan),
	}

	log.Println("reading workout plans CSV ...")

	plansCsvReader.Comma = ';'
	for {
		record, err := plansCsvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if len(record) != 4 {
			return nil, fmt.Errorf("record [%s] does not have 4 elements", record)
		}

		// ID;NAME;DURATION_MINUTES;DIFFICULTY
		id, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("record [%s] has invalid id: %w", record, err)
		}
		durationMinutes, err := strconv.Atoi(record[2])
		if err != nil {
			return nil, fmt.Errorf("record [%s] has invalid duration: %w", record, err)
		}

		plan := WorkoutPlan{
			ID:              id,
			Name:            record[1],
			DurationMinutes: durationMinutes,
			Difficulty:      record[3],
		}
		catalog.plans = append(catalog.plans, plan)
		catalog.plansByID[id] = plan
	}

	log.Printf("workout plans CSV read %d plans", len(catalog.plans))

	return catalog, nil
}

func (c *PlansCatalog) Plan(id int) (WorkoutPlan, bool) {
	plan, ok := c.plansByID[id]
	return plan, ok
}

func (c *PlansCatalog) Plans() []WorkoutPlan {
	return c.plans
}
