// Package i18n holds the user-facing message tables of the CLI.
package i18n

import (
	"fmt"
	"sort"
)

// SettingKey is the settings-table key holding the chosen language.
const SettingKey = "language"

// Fallback is used for unknown languages and missing keys.
const Fallback = "en"

var tables = map[string]map[string]string{
	"en": {
		"notes":          "Notes",
		"new_node":       "New node",
		"node_title":     "Node title:",
		"delete_confirm": "Do you really want to delete this node and all its children?",
		"success":        "Success",
		"note_saved":     "Note saved!",
		"confirmation":   "Confirmation",
		"error":          "Error",
		"move_error":     "Cannot move node: %v",
		"language":       "Language",
		"settings":       "Settings",
		"created":        "Created node %d",
		"deleted":        "Deleted %d node(s)",
		"moved":          "Moved node %d",
		"not_found":      "Node %d not found",
		"empty_title":    "The title cannot be empty; keeping %q",
		"empty_tree":     "No notes yet.",
		"no_selection":   "No node selected.",
		"yes":            "y",
	},
	"fr": {
		"notes":          "Notes",
		"new_node":       "Nouveau nœud",
		"node_title":     "Titre du nœud:",
		"delete_confirm": "Voulez-vous vraiment supprimer ce nœud et tous ses enfants ?",
		"success":        "Succès",
		"note_saved":     "Note enregistrée !",
		"confirmation":   "Confirmation",
		"error":          "Erreur",
		"move_error":     "Impossible de déplacer le nœud : %v",
		"language":       "Langue",
		"settings":       "Paramètres",
		"created":        "Nœud %d créé",
		"deleted":        "%d nœud(s) supprimé(s)",
		"moved":          "Nœud %d déplacé",
		"not_found":      "Nœud %d introuvable",
		"empty_title":    "Le titre ne peut pas être vide ; %q est conservé",
		"empty_tree":     "Aucune note pour l'instant.",
		"no_selection":   "Aucun nœud sélectionné.",
		"yes":            "o",
	},
	"es": {
		"notes":          "Notas",
		"new_node":       "Nueva nota",
		"node_title":     "Título de la nota:",
		"delete_confirm": "¿Realmente desea eliminar esta nota y todos sus hijos?",
		"success":        "Éxito",
		"note_saved":     "¡Nota guardada!",
		"confirmation":   "Confirmación",
		"error":          "Error",
		"move_error":     "No se puede mover la nota: %v",
		"language":       "Idioma",
		"settings":       "Ajustes",
		"yes":            "s",
	},
	"ko": {
		"notes":          "노트",
		"new_node":       "새 노트",
		"node_title":     "노트 제목:",
		"delete_confirm": "이 노트와 모든 하위 노트를 삭제하시겠습니까?",
		"success":        "성공",
		"note_saved":     "노트가 저장되었습니다!",
		"confirmation":   "확인",
		"error":          "오류",
		"move_error":     "노트를 이동할 수 없습니다: %v",
		"language":       "언어",
		"settings":       "설정",
	},
}

// Translator resolves message keys for one language.
type Translator struct {
	lang string
}

// New returns a Translator for lang, falling back to English when unknown.
func New(lang string) *Translator {
	if _, ok := tables[lang]; !ok {
		lang = Fallback
	}
	return &Translator{lang: lang}
}

// Lang returns the effective language code.
func (t *Translator) Lang() string {
	return t.lang
}

// T formats the message for key. Missing keys fall back to English, then to the key itself.
func (t *Translator) T(key string, args ...any) string {
	msg, ok := tables[t.lang][key]
	if !ok {
		msg, ok = tables[Fallback][key]
	}
	if !ok {
		return key
	}
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

// Supported reports whether lang has a message table.
func Supported(lang string) bool {
	_, ok := tables[lang]
	return ok
}

// Languages lists the available language codes, sorted.
func Languages() []string {
	langs := make([]string, 0, len(tables))
	for l := range tables {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	return langs
}
