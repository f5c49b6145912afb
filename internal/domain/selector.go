package domain

// Selector — декларативный предикат над role и labels worker'а.
//
// Семантика:
//   - Role, если задан, должен совпасть с ролью worker'а точно
//   - каждый ключ Labels должен присутствовать у worker'а с тем же значением
//   - пустой селектор совпадает с любым worker'ом
type Selector struct {
	Role   string            `json:"role,omitempty" yaml:"role,omitempty"`
	Labels map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
}

// IsEmpty возвращает true, если селектор не накладывает ограничений.
func (s Selector) IsEmpty() bool {
	return s.Role == "" && len(s.Labels) == 0
}

// Matches проверяет, совпадает ли worker с селектором.
func (s Selector) Matches(w WorkerRecord) bool {
	if s.Role != "" && w.Role != s.Role {
		return false
	}
	for key, value := range s.Labels {
		got, ok := w.Labels[key]
		if !ok || got != value {
			return false
		}
	}
	return true
}

// MatchTargets возвращает объединение worker'ов, совпавших хотя бы
// с одним из targets. Дедупликация по hostname, порядок исходного
// списка workers сохраняется.
func MatchTargets(workers []WorkerRecord, targets []Target) []WorkerRecord {
	seen := make(map[string]bool, len(workers))
	var matched []WorkerRecord

	for _, w := range workers {
		if seen[w.Hostname] {
			continue
		}
		for _, t := range targets {
			if t.Selector.Matches(w) {
				seen[w.Hostname] = true
				matched = append(matched, w)
				break
			}
		}
	}

	return matched
}
