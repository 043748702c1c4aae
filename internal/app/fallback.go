package app

import "exambank/internal/domain"

// Reserved ids of the built-in sample exams.
const (
	SampleExamID1 = "mock1"
	SampleExamID2 = "mock2"
)

// IsSampleID reports whether id names a built-in sample exam.
func IsSampleID(id string) bool {
	return id == SampleExamID1 || id == SampleExamID2
}

// SampleExams returns fresh copies of the two sample exams, newest first.
func SampleExams() []domain.Exam {
	return []domain.Exam{
		domain.NewExam(SampleExamID1, "ตัวอย่างข้อสอบ 1 (ข้อมูลจำลอง)", "01/05/2025", []domain.Question{
			{Question: "1 + 1 = ?", Answer: "2"},
			{Question: "2 + 2 = ?", Answer: "4"},
			{Question: "3 + 3 = ?", Answer: "6"},
		}),
		domain.NewExam(SampleExamID2, "ตัวอย่างข้อสอบ 2 (ข้อมูลจำลอง)", "30/04/2025", []domain.Question{
			{Question: "ประเทศไทยมีกี่จังหวัด?", Answer: "77 จังหวัด"},
			{Question: "เมืองหลวงของประเทศไทยคือ?", Answer: "กรุงเทพมหานคร"},
		}),
	}
}

func sampleExam(id string) (domain.Exam, bool) {
	for _, exam := range SampleExams() {
		if exam.ID == id {
			return exam, true
		}
	}
	return domain.Exam{}, false
}

func fallbackResult(source Source) ListResult {
	return ListResult{Exams: SampleExams(), Source: source}
}
