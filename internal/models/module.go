package models

import "time"

// ModuleTier — цена тира в кубах и награда за прохождение.
type ModuleTier struct {
	Cost   int
	Reward int
}

// ModuleTiers — справочник тиров модулей. Ключ сверяется с полем Tier
// модуля и с покрытием тарифного плана.
var ModuleTiers = map[string]ModuleTier{
	"Tier 0":   {Cost: 10, Reward: 10},
	"Tier I":   {Cost: 50, Reward: 10},
	"Tier II":  {Cost: 100, Reward: 20},
	"Tier III": {Cost: 500, Reward: 100},
	"Tier IV":  {Cost: 1000, Reward: 200},
}

// Module описывает учебный модуль из каталога.
type Module struct {
	ID              int       `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	ImageURL        string    `json:"imageUrl"`
	Maker           string    `json:"maker"`
	Difficulty      string    `json:"difficulty"`
	Tier            string    `json:"tier"`
	Category        string    `json:"category"`
	Prelude         string    `json:"prelude"`
	HoursToComplete int       `json:"hoursToComplete"`
	ReleaseDate     time.Time `json:"releaseDate"`
	Conditions      []string  `json:"conditions"`
}

// HasCondition проверяет наличие условия (например coming_soon или locked).
func (m *Module) HasCondition(cond string) bool {
	for _, c := range m.Conditions {
		if c == cond {
			return true
		}
	}
	return false
}

// UnlockedModule — запись о разблокированном пользователем модуле.
type UnlockedModule struct {
	UserID   string `json:"userId"`
	ModuleID int    `json:"moduleId"`
}
