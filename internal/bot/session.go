package bot

type state int

const (
	stateIdle state = iota
	stateVocabName
	stateVocabList
	stateTuitionFiles
	stateTuitionNotes
)

func (s state) String() string {
	switch s {
	case stateVocabName:
		return "vocab_name"
	case stateVocabList:
		return "vocab_list"
	case stateTuitionFiles:
		return "tuition_files"
	case stateTuitionNotes:
		return "tuition_notes"
	default:
		return "idle"
	}
}

type session struct {
	state   state
	student string
	files   []string
}

func (s *session) reset() {
	*s = session{}
}

func (s *session) addFile(name string) {
	for _, f := range s.files {
		if f == name {
			return
		}
	}
	s.files = append(s.files, name)
}

// session returns the chat's session, creating it on first use.
func (b *Bot) session(chatID int64) *session {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[chatID]
	if !ok {
		s = &session{}
		b.sessions[chatID] = s
	}
	return s
}
