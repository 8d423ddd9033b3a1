package domain

import (
	"encoding/json"
	"strconv"
)

// Ratio is a quotient that may be undefined, e.g. an average over zero days.
// The zero value is Undefined.
type Ratio struct {
	Value   float64
	Defined bool
}

var Undefined = Ratio{}

func DefinedRatio(v float64) Ratio {
	return Ratio{Value: v, Defined: true}
}

func (r Ratio) String() string {
	if !r.Defined {
		return "N/A"
	}
	return strconv.FormatFloat(r.Value, 'f', 2, 64)
}

func (r Ratio) MarshalJSON() ([]byte, error) {
	if !r.Defined {
		return []byte("null"), nil
	}
	return json.Marshal(r.Value)
}

func (r Ratio) MarshalYAML() (interface{}, error) {
	if !r.Defined {
		return nil, nil
	}
	return r.Value, nil
}

func (r *Ratio) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = Undefined
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = DefinedRatio(v)
	return nil
}

type ItemCount struct {
	ItemID string `json:"item_id" yaml:"item_id"`
	Count  int    `json:"count" yaml:"count"`
}

type ItemStreak struct {
	ItemID  string `json:"item_id" yaml:"item_id"`
	Current int    `json:"current" yaml:"current"`
	Best    int    `json:"best" yaml:"best"`
}

type Statistics struct {
	From               DayKey       `json:"from,omitempty" yaml:"from,omitempty"`
	To                 DayKey       `json:"to,omitempty" yaml:"to,omitempty"`
	TotalRecords       int          `json:"total_records" yaml:"total_records"`
	TotalDays          int          `json:"total_days" yaml:"total_days"`
	AveragePerDay      Ratio        `json:"average_per_day" yaml:"average_per_day"`
	CompletionRate     Ratio        `json:"completion_rate" yaml:"completion_rate"`
	MostCompletions    *ItemCount   `json:"most_completions" yaml:"most_completions"`
	CurrentUsageStreak int          `json:"current_usage_streak" yaml:"current_usage_streak"`
	ItemStreaks        []ItemStreak `json:"item_streaks" yaml:"item_streaks"`
}

// ItemReport summarises one item over a report window.
type ItemReport struct {
	ItemID         string `json:"item_id" yaml:"item_id"`
	Name           string `json:"name" yaml:"name"`
	Color          string `json:"color,omitempty" yaml:"color,omitempty"`
	Unit           string `json:"unit,omitempty" yaml:"unit,omitempty"`
	Goal           int    `json:"goal" yaml:"goal"`
	Archived       bool   `json:"archived" yaml:"archived"`
	TotalRecords   int    `json:"total_records" yaml:"total_records"`
	DaysCompleted  int    `json:"days_completed" yaml:"days_completed"`
	CompletionRate Ratio  `json:"completion_rate" yaml:"completion_rate"`
	DailyProgress  []int  `json:"daily_progress" yaml:"daily_progress"`
	CurrentStreak  int    `json:"current_streak" yaml:"current_streak"`
	BestStreak     int    `json:"best_streak" yaml:"best_streak"`
}

type Report struct {
	UserID     string       `json:"user_id" yaml:"user_id"`
	Statistics Statistics   `json:"statistics" yaml:"statistics"`
	Items      []ItemReport `json:"items" yaml:"items"`
}
