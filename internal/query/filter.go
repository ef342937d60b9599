package query

import "go.mongodb.org/mongo-driver/bson/primitive"

// Condition es una de las variantes de predicado. La traducción a la forma nativa
// del almacenamiento la hace cada repositorio.
type Condition interface {
	condition()
}

// Equals compara un campo de texto con un valor, anclado en ambos extremos
type Equals struct {
	Field    string
	Value    string
	FoldCase bool
}

// Contains busca una subcadena sin distinguir mayúsculas
type Contains struct {
	Field string
	Value string
}

// Bound es un extremo de un rango numérico
type Bound struct {
	Value     float64
	Inclusive bool
}

// Range restringe un campo numérico. Un extremo nil no restringe.
type Range struct {
	Field string
	Lower *Bound
	Upper *Bound
}

// AnyOf se cumple si algún elemento del campo contiene alguno de los valores
type AnyOf struct {
	Field  string
	Values []string
}

// AnyFieldContains se cumple si alguno de los campos contiene el valor
type AnyFieldContains struct {
	Fields []string
	Value  string
}

// TextSearch delega en el índice de texto del almacenamiento
type TextSearch struct {
	Term string
}

// ExcludeID descarta un documento concreto
type ExcludeID struct {
	ID primitive.ObjectID
}

func (Equals) condition()           {}
func (Contains) condition()         {}
func (Range) condition()            {}
func (AnyOf) condition()            {}
func (AnyFieldContains) condition() {}
func (TextSearch) condition()       {}
func (ExcludeID) condition()        {}

// Filter es la conjunción de sus condiciones. Un filtro vacío casa con todo.
type Filter struct {
	Conditions []Condition
}

// Add agrega una condición al filtro
func (f *Filter) Add(c Condition) {
	f.Conditions = append(f.Conditions, c)
}

// Empty indica que el filtro no restringe nada
func (f Filter) Empty() bool {
	return len(f.Conditions) == 0
}

// Text devuelve la búsqueda de texto del filtro, si la hay
func (f Filter) Text() (TextSearch, bool) {
	for _, c := range f.Conditions {
		if ts, ok := c.(TextSearch); ok {
			return ts, true
		}
	}
	return TextSearch{}, false
}

// Sort es un único campo de ordenamiento. Relevance ordena por la puntuación de texto.
type Sort struct {
	Field     string
	Ascending bool
	Relevance bool
}

// Order devuelve el nombre del sentido del orden
func (s Sort) Order() string {
	if s.Ascending {
		return "asc"
	}
	return "desc"
}
