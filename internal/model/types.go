package model

// Model описывает структуру поисковой модели в конфигурации.
// A model is the unit a widget descriptor references by name: enough
// schema to rebuild a filtered SELECT later without storing rows.
type Model struct {
	Name       string                    `yaml:"-"` // logical name of the model
	Table      string                    `yaml:"table"`
	PrimaryKey string                    `yaml:"primary_key"` // optional, default "id"
	Label      string                    `yaml:"label"`       // format template, e.g. "{title} ({artist.title})"
	Order      string                    `yaml:"order"`       // default ordering, e.g. "title ASC"
	Relations  map[string]*ModelRelation `yaml:"relations"`
}

// ModelRelation описывает связь между моделями в конфигурации
type ModelRelation struct {
	Type  string `yaml:"type"`  // has_one, has_many, belongs_to
	Model string `yaml:"model"` // название связанной модели (логическое)
	Table string `yaml:"table"` // имя таблицы в SQL (default: related model's table)
	FK    string `yaml:"fk"`    // внешний ключ
	PK    string `yaml:"pk"`    // if not "id", primary key on the owning side

	// many-to-many: join table between the two models
	Through      string `yaml:"through"`
	ThroughFK    string `yaml:"through_fk"`     // fk to the current model in the join table
	ThroughRefFK string `yaml:"through_ref_fk"` // fk to the related model in the join table

	// для runtime (не сериализуется)
	_ModelRef *Model `yaml:"-"`
}

// JoinSpec is one LEFT JOIN needed to reach a related column.
type JoinSpec struct {
	Table       string
	Alias       string
	On          string
	Duplicative bool // join can multiply base rows (to-many)
}

// GetPrimaryKey возвращает поле первичного ключа модели (default "id").
func (m *Model) GetPrimaryKey() string {
	if m.PrimaryKey != "" {
		return m.PrimaryKey
	}
	return "id"
}

// LabelTemplate returns the configured label format, falling back to
// the primary key so every model renders *something* as option text.
func (m *Model) LabelTemplate() string {
	if m.Label != "" {
		return m.Label
	}
	return "{" + m.GetPrimaryKey() + "}"
}

// Duplicative reports whether traversing this relation can produce
// duplicate base rows under a join.
func (r *ModelRelation) Duplicative() bool {
	return r.Type == "has_many" || r.Through != ""
}

// GetModelRef возвращает ссылку на модель, если она уже загружена
func (r *ModelRelation) GetModelRef() *Model {
	return r._ModelRef
}

// SetModelRef устанавливает ссылку на модель (вызывается из Registry после загрузки всех моделей)
func (r *ModelRelation) SetModelRef(model *Model) {
	r._ModelRef = model
}
