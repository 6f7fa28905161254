// Package canon holds the 66-book catalog and resolves user-supplied book
// names and chapter expressions against it.
package canon

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/chech0x/parsedBible/core/errors"
)

// Book is one canonical book.
type Book struct {
	Order    int      // 1..66
	Code     string   // 3-character lowercase code, e.g. "1co"
	Name     string   // English display name, e.g. "1 Corinthians"
	Chapters int      // chapter count
	Aliases  []string // lowercase names accepted by ResolveBook
}

// books is the canonical catalog in biblical order.
var books = []Book{
	{1, "gen", "Genesis", 50, []string{"genesis", "génesis", "gen"}},
	{2, "exo", "Exodus", 40, []string{"exodus", "éxodo", "exo"}},
	{3, "lev", "Leviticus", 27, []string{"leviticus", "levítico", "lev"}},
	{4, "num", "Numbers", 36, []string{"numbers", "números", "num"}},
	{5, "deu", "Deuteronomy", 34, []string{"deuteronomy", "deuteronomio", "deu"}},
	{6, "jos", "Joshua", 24, []string{"joshua", "josué", "jos"}},
	{7, "jdg", "Judges", 21, []string{"judges", "jueces", "jdg"}},
	{8, "rut", "Ruth", 4, []string{"ruth", "rut"}},
	{9, "1sa", "1 Samuel", 31, []string{"1 samuel", "first samuel", "1sa"}},
	{10, "2sa", "2 Samuel", 24, []string{"2 samuel", "second samuel", "2sa"}},
	{11, "1ki", "1 Kings", 22, []string{"1 kings", "1 reyes", "1ki"}},
	{12, "2ki", "2 Kings", 25, []string{"2 kings", "2 reyes", "2ki"}},
	{13, "1ch", "1 Chronicles", 29, []string{"1 chronicles", "1 cronicas", "1 crónicas", "1ch"}},
	{14, "2ch", "2 Chronicles", 36, []string{"2 chronicles", "2 cronicas", "2 crónicas", "2ch"}},
	{15, "ezr", "Ezra", 10, []string{"ezra", "esdras", "ezr"}},
	{16, "neh", "Nehemiah", 13, []string{"nehemiah", "nehemias", "nehemías", "neh"}},
	{17, "est", "Esther", 10, []string{"esther", "ester", "est"}},
	{18, "job", "Job", 42, []string{"job"}},
	{19, "psa", "Psalms", 150, []string{"psalms", "salmos", "psa"}},
	{20, "pro", "Proverbs", 31, []string{"proverbs", "proverbios", "pro"}},
	{21, "ecc", "Ecclesiastes", 12, []string{"ecclesiastes", "eclesiastes", "eclesiastés", "ecc"}},
	{22, "sng", "Song of Solomon", 8, []string{"song of solomon", "song of songs", "cantares", "cantar de los cantares", "sng"}},
	{23, "isa", "Isaiah", 66, []string{"isaiah", "isaias", "isaías", "isa"}},
	{24, "jer", "Jeremiah", 52, []string{"jeremiah", "jeremias", "jeremías", "jer"}},
	{25, "lam", "Lamentations", 5, []string{"lamentations", "lamentaciones", "lam"}},
	{26, "ezk", "Ezekiel", 48, []string{"ezekiel", "ezequiel", "ezk"}},
	{27, "dan", "Daniel", 12, []string{"daniel", "dan"}},
	{28, "hos", "Hosea", 14, []string{"hosea", "oseas", "hos"}},
	{29, "jol", "Joel", 3, []string{"joel", "jol"}},
	{30, "amo", "Amos", 9, []string{"amos", "amós", "amo"}},
	{31, "oba", "Obadiah", 1, []string{"obadiah", "abdias", "abdías", "oba"}},
	{32, "jon", "Jonah", 4, []string{"jonah", "jonas", "jonás", "jon"}},
	{33, "mic", "Micah", 7, []string{"micah", "miqueas", "mic"}},
	{34, "nam", "Nahum", 3, []string{"nahum", "nam"}},
	{35, "hab", "Habakkuk", 3, []string{"habakkuk", "habacuc", "hab"}},
	{36, "zep", "Zephaniah", 3, []string{"zephaniah", "sofonias", "sofonías", "zep"}},
	{37, "hag", "Haggai", 2, []string{"haggai", "hageo", "hag"}},
	{38, "zec", "Zechariah", 14, []string{"zechariah", "zacarias", "zacarías", "zec"}},
	{39, "mal", "Malachi", 4, []string{"malachi", "malaquias", "malaquías", "mal"}},
	{40, "mat", "Matthew", 28, []string{"matthew", "mateo", "mat"}},
	{41, "mrk", "Mark", 16, []string{"mark", "marcos", "mrk"}},
	{42, "luk", "Luke", 24, []string{"luke", "lucas", "luk"}},
	{43, "jhn", "John", 21, []string{"john", "juan", "jhn"}},
	{44, "act", "Acts", 28, []string{"acts", "hechos", "act"}},
	{45, "rom", "Romans", 16, []string{"romans", "romanos", "rom"}},
	{46, "1co", "1 Corinthians", 16, []string{"1 corinthians", "1 corintios", "1co"}},
	{47, "2co", "2 Corinthians", 13, []string{"2 corinthians", "2 corintios", "2co"}},
	{48, "gal", "Galatians", 6, []string{"galatians", "galatas", "gálatas", "gal"}},
	{49, "eph", "Ephesians", 6, []string{"ephesians", "efesios", "eph"}},
	{50, "php", "Philippians", 4, []string{"philippians", "filipenses", "php"}},
	{51, "col", "Colossians", 4, []string{"colossians", "colosenses", "col"}},
	{52, "1th", "1 Thessalonians", 5, []string{"1 thessalonians", "1 tesalonicenses", "1th"}},
	{53, "2th", "2 Thessalonians", 3, []string{"2 thessalonians", "2 tesalonicenses", "2th"}},
	{54, "1ti", "1 Timothy", 6, []string{"1 timothy", "1 timoteo", "1ti"}},
	{55, "2ti", "2 Timothy", 4, []string{"2 timothy", "2 timoteo", "2ti"}},
	{56, "tit", "Titus", 3, []string{"titus", "tito", "tit"}},
	{57, "phm", "Philemon", 1, []string{"philemon", "filemon", "filemón", "phm"}},
	{58, "heb", "Hebrews", 13, []string{"hebrews", "hebreos", "heb"}},
	{59, "jas", "James", 5, []string{"james", "santiago", "jas"}},
	{60, "1pe", "1 Peter", 5, []string{"1 peter", "1 pedro", "1pe"}},
	{61, "2pe", "2 Peter", 3, []string{"2 peter", "2 pedro", "2pe"}},
	{62, "1jn", "1 John", 5, []string{"1 john", "1 juan", "1jn"}},
	{63, "2jn", "2 John", 1, []string{"2 john", "2 juan", "2jn"}},
	{64, "3jn", "3 John", 1, []string{"3 john", "3 juan", "3jn"}},
	{65, "jud", "Jude", 1, []string{"jude", "judas", "jud"}},
	{66, "rev", "Revelation", 22, []string{"revelation", "apocalipsis", "revelacion", "revelación", "rev"}},
}

// aliasIndex maps a normalized alias to its index in books.
// byCode maps a book code to its index in books.
var (
	aliasIndex = buildAliasIndex()
	byCode     = buildCodeIndex()
)

func buildAliasIndex() map[string]int {
	m := make(map[string]int, len(books)*4)
	for i, b := range books {
		for _, a := range b.Aliases {
			m[normalizeAlias(a)] = i
		}
		m[normalizeAlias(b.Name)] = i
	}
	return m
}

func buildCodeIndex() map[string]int {
	m := make(map[string]int, len(books))
	for i, b := range books {
		m[b.Code] = i
	}
	return m
}

// normalizeAlias folds case, trims, and composes accents so that "Génesis"
// typed with a combining acute matches the stored alias.
func normalizeAlias(s string) string {
	s = norm.NFC.String(strings.TrimSpace(s))
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Books returns all 66 books in canonical order.
// The returned slice is a copy.
func Books() []Book {
	out := make([]Book, len(books))
	copy(out, books)
	return out
}

// ByCode returns the book with the given code.
func ByCode(code string) (Book, bool) {
	i, ok := byCode[strings.ToLower(code)]
	if !ok {
		return Book{}, false
	}
	return books[i], true
}

// ResolveBook maps a user-supplied book name to its catalog entry.
// Matching ignores case and surrounding whitespace.
func ResolveBook(input string) (Book, error) {
	i, ok := aliasIndex[normalizeAlias(input)]
	if !ok {
		return Book{}, errors.NewUnknownBook(input)
	}
	return books[i], nil
}

// DisplayName returns the catalog name for a code, or the code capitalized
// when the code is not in the catalog.
func DisplayName(code string) string {
	if b, ok := ByCode(code); ok {
		return b.Name
	}
	if code == "" {
		return ""
	}
	return strings.ToUpper(code[:1]) + code[1:]
}
