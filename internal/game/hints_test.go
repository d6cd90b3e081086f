package game

import "testing"

// собирает n кандидатов, у которых на вопрос qid ответ "да" ровно у yes штук
func candidatesWithYes(t *testing.T, n int, questions []int64, yesByQuestion map[int64]int) []Candidate {
	t.Helper()
	out := make([]Candidate, n)
	for i := range out {
		out[i].ID = int64(i + 1)
		for _, qid := range questions {
			out[i].Answers = append(out[i].Answers, QuestionAnswer{
				QuestionID: qid,
				Answer:     i < yesByQuestion[qid],
				Percentage: 90,
			})
		}
	}
	return out
}

func TestRankQuestionsBisection(t *testing.T) {
	// 8 кандидатов, три неотвеченных вопроса с yes-счетчиками {2,4,6}:
	// вопрос со счетчиком 4 - лучший (дистанция 0 до remaining/2)
	candidates := candidatesWithYes(t, 8, []int64{10, 20, 30}, map[int64]int{
		10: 2,
		20: 4,
		30: 6,
	})

	ranked := RankQuestions(candidates, nil)
	if len(ranked) != 3 {
		t.Fatalf("ожидалось 3 вопроса, получено %d", len(ranked))
	}
	if ranked[0].QuestionID != 20 || ranked[0].Distance != 0 {
		t.Fatalf("лучшим должен быть вопрос 20: %+v", ranked[0])
	}
	// дистанции 2 и 2: ничья разрешается исходным порядком вопросов
	if ranked[1].QuestionID != 10 || ranked[2].QuestionID != 30 {
		t.Fatalf("ничья должна сохранять исходный порядок: %+v", ranked)
	}
	for _, r := range ranked {
		if !r.Best {
			t.Fatalf("при трех вопросах все попадают в топ-4: %+v", r)
		}
	}
}

func TestRankQuestionsSkipsAnsweredAndLimitsBest(t *testing.T) {
	questions := []int64{1, 2, 3, 4, 5, 6}
	candidates := candidatesWithYes(t, 6, questions, map[int64]int{
		1: 3, 2: 0, 3: 1, 4: 2, 5: 6, 6: 4,
	})

	ranked := RankQuestions(candidates, []int64{5})
	if len(ranked) != 5 {
		t.Fatalf("отвеченный вопрос должен быть исключен: %+v", ranked)
	}
	best := 0
	for _, r := range ranked {
		if r.QuestionID == 5 {
			t.Fatalf("вопрос 5 уже отвечен")
		}
		if r.Best {
			best++
		}
	}
	if best != 4 {
		t.Fatalf("best должно быть ровно 4, получено %d", best)
	}
	if ranked[0].QuestionID != 1 {
		t.Fatalf("вопрос 1 (yes=3 из 6) делит ровно пополам: %+v", ranked[0])
	}
}

func TestEliminate(t *testing.T) {
	candidates := []Candidate{
		{ID: 1, Answers: []QuestionAnswer{{QuestionID: 7, Answer: true}}},
		{ID: 2, Answers: []QuestionAnswer{{QuestionID: 7, Answer: false}}},
		{ID: 3, Answers: []QuestionAnswer{{QuestionID: 8, Answer: true}}},
	}

	// услышали "да" на вопрос 7: кандидат 2 несовместим,
	// у кандидата 3 ответа на этот вопрос нет - не отбрасывается
	out := Eliminate(candidates, 7, true)
	if len(out) != 1 || out[0] != 2 {
		t.Fatalf("ожидался только кандидат 2: %v", out)
	}

	out = Eliminate(candidates, 7, false)
	if len(out) != 1 || out[0] != 1 {
		t.Fatalf("ожидался только кандидат 1: %v", out)
	}
}
