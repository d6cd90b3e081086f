package game

import "sort"

// Предвычисленный ответ персонажа на вопрос: приходит из внешней
// AI-подсистемы, здесь только потребляется
type QuestionAnswer struct {
	QuestionID int64   `json:"question_id"`
	Answer     bool    `json:"answer"`
	Percentage float64 `json:"percentage"`
}

// Оставшийся кандидат с его массивом предвычисленных ответов
type Candidate struct {
	ID      int64            `json:"id"`
	Answers []QuestionAnswer `json:"answers"`
}

// Вопрос, ранжированный по тому, насколько ровно он делит кандидатов
type RankedQuestion struct {
	QuestionID int64   `json:"question_id"`
	YesCount   int     `json:"yes_count"`
	Distance   float64 `json:"distance"`
	Best       bool    `json:"best"`
}

// сколько вопросов помечается лучшими
const bestQuestions = 4

// RankQuestions ранжирует неотвеченные вопросы по |yes - remaining/2|
// по возрастанию; ничьи сохраняют исходный порядок вопросов, топ-4
// помечаются best. Подсказка для фазы выбора вопроса
func RankQuestions(candidates []Candidate, answered []int64) []RankedQuestion {
	asked := make(map[int64]bool, len(answered))
	for _, id := range answered {
		asked[id] = true
	}

	// порядок вопросов - порядок первого появления в массивах ответов
	var order []int64
	yes := make(map[int64]int)
	seen := make(map[int64]bool)
	for _, c := range candidates {
		for _, qa := range c.Answers {
			if asked[qa.QuestionID] {
				continue
			}
			if !seen[qa.QuestionID] {
				seen[qa.QuestionID] = true
				order = append(order, qa.QuestionID)
			}
			if qa.Answer {
				yes[qa.QuestionID]++
			}
		}
	}

	target := float64(len(candidates)) / 2
	ranked := make([]RankedQuestion, 0, len(order))
	for _, qid := range order {
		count := yes[qid]
		dist := float64(count) - target
		if dist < 0 {
			dist = -dist
		}
		ranked = append(ranked, RankedQuestion{
			QuestionID: qid,
			YesCount:   count,
			Distance:   dist,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Distance < ranked[j].Distance
	})
	for i := range ranked {
		if i < bestQuestions {
			ranked[i].Best = true
		}
	}
	return ranked
}

// Eliminate возвращает id кандидатов, несовместимых с полученным ответом:
// кандидат отбрасывается, если его предвычисленный ответ на заданный вопрос
// отличается от услышанного. Подсказка для фазы закрытия
func Eliminate(candidates []Candidate, questionID int64, answer bool) []int64 {
	var out []int64
	for _, c := range candidates {
		for _, qa := range c.Answers {
			if qa.QuestionID == questionID && qa.Answer != answer {
				out = append(out, c.ID)
				break
			}
		}
	}
	return out
}
