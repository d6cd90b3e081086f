package handlers

import "testing"

func TestToCandidatesKeepsFractionalPercentage(t *testing.T) {
	in := []hintCandidate{{
		ID: 4,
		Answers: []hintAnswer{
			{QuestionID: 9, Answer: true, Percentage: 62.5},
			{QuestionID: 11, Answer: false, Percentage: 0.4},
		},
	}}

	out := toCandidates(in)
	if len(out) != 1 || out[0].ID != 4 || len(out[0].Answers) != 2 {
		t.Fatalf("кандидат должен переноситься целиком: %+v", out)
	}
	a := out[0].Answers[0]
	if a.QuestionID != 9 || !a.Answer || a.Percentage != 62.5 {
		t.Fatalf("дробная доля должна переноситься без округления: %+v", a)
	}
	if out[0].Answers[1].Percentage != 0.4 {
		t.Fatalf("доля меньше единицы потерялась: %+v", out[0].Answers[1])
	}
}
