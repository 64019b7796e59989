package report

import "strings"

// Bilingual is a label printed in English and Traditional Chinese.
type Bilingual struct {
	EN string
	ZH string
}

func (b Bilingual) join(sep string, cjk bool) string {
	if !cjk || b.ZH == "" {
		return b.EN
	}
	if b.EN == "" {
		return b.ZH
	}
	return b.EN + sep + b.ZH
}

// Layout holds every fixed string printed on the documents.
type Layout struct {
	Business     string
	Title        Bilingual
	StudentLabel Bilingual
	TutorLabel   Bilingual
	TutorName    string
	Columns      [3]Bilingual
	TotalLabel   Bilingual
	NotesLabel   Bilingual
	Missing      string
	VocabColumns [2]string
}

func DefaultLayout() Layout {
	return Layout{
		Business:     "Louis English Tutorial Lesson",
		Title:        Bilingual{"Tuition Fee Debit Note", "學費單"},
		StudentLabel: Bilingual{"Student Name", "學生姓名"},
		TutorLabel:   Bilingual{"Tutor Name", "導師姓名"},
		TutorName:    "Louis Tsang",
		Columns: [3]Bilingual{
			{"Tuition Fees", "學費"},
			{"Payment", "付款狀態"},
			{"Lesson", "課堂狀態"},
		},
		TotalLabel:   Bilingual{"Total", "總數"},
		NotesLabel:   Bilingual{"Notes", "備註"},
		Missing:      "N/A",
		VocabColumns: [2]string{"Vocabulary (Part of Speech)", "Chinese Meaning"},
	}
}

// WithNames overrides the business and tutor names when set.
func (l Layout) WithNames(business, tutor string) Layout {
	if strings.TrimSpace(business) != "" {
		l.Business = business
	}
	if strings.TrimSpace(tutor) != "" {
		l.TutorName = tutor
	}
	return l
}
