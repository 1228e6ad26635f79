package catalog

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Entry is one catalog item: a stable code plus Czech and English labels and
// the synonyms the search field should also hit.
type Entry struct {
	Code     string
	CS       string
	EN       string
	Synonyms []string
}

const CustomPrefix = "custom:"

var Diets = []Entry{
	{Code: "vegan", CS: "Vegan", EN: "Vegan", Synonyms: []string{"vegan", "veganské"}},
	{Code: "vegetarian", CS: "Vegetarián", EN: "Vegetarian", Synonyms: []string{"vegetarián", "vegetarian"}},
	{Code: "pescetarian", CS: "Pescetarián", EN: "Pescetarian", Synonyms: []string{"pescetarián", "ryby", "fish"}},
	{Code: "mediterranean", CS: "Středomořská", EN: "Mediterranean", Synonyms: []string{"středomořská", "mediterranean", "med"}},
	{Code: "low-carb", CS: "Low-carb", EN: "Low-carb", Synonyms: []string{"lowcarb", "nízkosacharidová", "low carb"}},
	{Code: "keto", CS: "Keto", EN: "Keto", Synonyms: []string{"keto", "ketogenní"}},
	{Code: "low-fodmap", CS: "Low-FODMAP", EN: "Low-FODMAP", Synonyms: []string{"low fodmap", "fodmap"}},
	{Code: "gluten-free", CS: "Bez lepku", EN: "Gluten-free", Synonyms: []string{"bezlepková", "bez lepku", "gluten free", "gluten-free"}},
	{Code: "dairy-free", CS: "Bez mléka", EN: "Dairy-free", Synonyms: []string{"bez mléka", "dairy free", "milk free"}},
	{Code: "high-protein", CS: "Vysoký protein", EN: "High-protein", Synonyms: []string{"vysokoproteinová", "protein"}},
}

var Allergens = []Entry{
	{Code: "gluten", CS: "Lepek", EN: "Gluten", Synonyms: []string{"lepek", "gluten"}},
	{Code: "milk", CS: "Mléko", EN: "Milk", Synonyms: []string{"mléko", "milk", "dairy"}},
	{Code: "lactose", CS: "Laktóza", EN: "Lactose", Synonyms: []string{"laktóza", "lactose"}},
	{Code: "egg", CS: "Vejce", EN: "Egg", Synonyms: []string{"vejce", "egg", "eggs"}},
	{Code: "peanut", CS: "Arašíd", EN: "Peanut", Synonyms: []string{"arašídy", "arašíd", "peanut", "peanuts"}},
	{Code: "tree-nut", CS: "Skořápkové plody", EN: "Tree nut", Synonyms: []string{"ořechy", "skořápkové", "tree nut", "nuts"}},
	{Code: "soy", CS: "Sója", EN: "Soy", Synonyms: []string{"sója", "soja", "soy"}},
	{Code: "fish", CS: "Ryba", EN: "Fish", Synonyms: []string{"ryba", "ryby", "fish"}},
	{Code: "crustacean", CS: "Korýš", EN: "Crustacean", Synonyms: []string{"korýši", "korýš", "crustacean", "shellfish"}},
	{Code: "mollusc", CS: "Měkkýš", EN: "Mollusc", Synonyms: []string{"měkkýši", "měkkýš", "mollusc"}},
	{Code: "sesame", CS: "Sezam", EN: "Sesame", Synonyms: []string{"sezam", "sesame"}},
	{Code: "celery", CS: "Celer", EN: "Celery", Synonyms: []string{"celer", "celery"}},
	{Code: "mustard", CS: "Hořčice", EN: "Mustard", Synonyms: []string{"hořčice", "horcice", "mustard"}},
	{Code: "sulphite", CS: "Siřičitany", EN: "Sulphites", Synonyms: []string{"siricitan", "siřičitan", "sulphite", "sulfite"}},
	{Code: "lupin", CS: "Vlčí bob (Lupina)", EN: "Lupin", Synonyms: []string{"lupina", "vlčí bob", "lupin"}},
}

var Cuisines = []Entry{
	{Code: "italian", CS: "Italská", EN: "Italian", Synonyms: []string{"italská", "italian", "pizza", "pasta"}},
	{Code: "chinese", CS: "Čínská", EN: "Chinese", Synonyms: []string{"čínská", "cinska", "chinese"}},
	{Code: "japanese", CS: "Japonská", EN: "Japanese", Synonyms: []string{"japonská", "japanese", "sushi", "ramen"}},
	{Code: "indian", CS: "Indická", EN: "Indian", Synonyms: []string{"indická", "indian", "curry", "masala"}},
	{Code: "thai", CS: "Thajská", EN: "Thai", Synonyms: []string{"thajská", "thai", "pad thai"}},
	{Code: "mexican", CS: "Mexická", EN: "Mexican", Synonyms: []string{"mexická", "mexican", "tacos", "burrito"}},
	{Code: "american", CS: "Americká", EN: "American", Synonyms: []string{"americká", "american", "burger"}},
	{Code: "french", CS: "Francouzská", EN: "French", Synonyms: []string{"francouzská", "french"}},
	{Code: "spanish", CS: "Španělská", EN: "Spanish", Synonyms: []string{"španělská", "spanelska", "spanish", "tapas", "paella"}},
	{Code: "greek", CS: "Řecká", EN: "Greek", Synonyms: []string{"řecká", "recka", "greek", "gyros"}},
	{Code: "mediterranean", CS: "Středomořská", EN: "Mediterranean", Synonyms: []string{"středomořská", "mediterranean"}},
	{Code: "korean", CS: "Korejská", EN: "Korean", Synonyms: []string{"korejská", "korean", "kimchi", "bibimbap"}},
	{Code: "vietnamese", CS: "Vietnamská", EN: "Vietnamese", Synonyms: []string{"vietnamská", "vietnamese", "pho", "banh mi"}},
	{Code: "turkish", CS: "Turecká", EN: "Turkish", Synonyms: []string{"turecká", "turkish", "kebab"}},
	{Code: "lebanese", CS: "Libanonská", EN: "Lebanese", Synonyms: []string{"libanonská", "lebanese", "mezze"}},
	{Code: "brazilian", CS: "Brazilská", EN: "Brazilian", Synonyms: []string{"brazilská", "brazilian", "churrasco"}},
	{Code: "ethiopian", CS: "Etiopská", EN: "Ethiopian", Synonyms: []string{"etiopská", "ethiopian", "injera"}},
	{Code: "moroccan", CS: "Marocká", EN: "Moroccan", Synonyms: []string{"marocká", "moroccan", "tagine"}},
	{Code: "czech", CS: "Česká", EN: "Czech", Synonyms: []string{"česká", "ceska", "czech", "svickova", "svíčková", "gulas", "guláš"}},
	{Code: "slovak", CS: "Slovenská", EN: "Slovak", Synonyms: []string{"slovenská", "slovenska", "slovak", "halusky", "halušky", "bryndza"}},
	{Code: "polish", CS: "Polská", EN: "Polish", Synonyms: []string{"polská", "polska", "polish", "pierogi", "bigos", "zurek"}},
}

var kinds = map[string][]Entry{
	"diets":     Diets,
	"allergens": Allergens,
	"cuisines":  Cuisines,
}

// Entries returns the catalog for a kind ("diets", "allergens", "cuisines").
func Entries(kind string) ([]Entry, bool) {
	entries, ok := kinds[kind]
	return entries, ok
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify folds diacritics, lowercases and collapses every non-alphanumeric
// run to a single dash. "Bez lepku" -> "bez-lepku".
func Slugify(s string) string {
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)
	var b strings.Builder
	lastDash := true
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastDash = false
		} else if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

// CustomCode wraps user-entered free text as a custom code, or returns ""
// when nothing slug-worthy remains.
func CustomCode(input string) string {
	s := Slugify(input)
	if s == "" {
		return ""
	}
	return CustomPrefix + s
}

// Label maps a code to its display string for lang ("cs" or anything else
// meaning English). Custom codes de-slugify; unknown codes fall back to the
// code itself so every code renders non-empty.
func Label(code, lang string) string {
	for _, entries := range kinds {
		for _, e := range entries {
			if e.Code == code {
				if lang == "cs" {
					return e.CS
				}
				return e.EN
			}
		}
	}
	if strings.HasPrefix(code, CustomPrefix) {
		return strings.ReplaceAll(Slugify(code[len(CustomPrefix):]), "-", " ")
	}
	return code
}

// norm for matching: slug without the dashes, so "pad thai" == "padthai".
func matchKey(s string) string {
	return strings.ReplaceAll(Slugify(s), "-", "")
}

// score ranks a candidate against the normalized query:
// prefix > word-start > contains > synonym. Negative means no match.
func score(label string, synonyms []string, q string) int {
	nlabel := matchKey(label)
	if q == "" {
		return 0
	}
	if strings.HasPrefix(nlabel, q) {
		return 100 - (len(nlabel) - len(q))
	}
	for _, w := range strings.FieldsFunc(strings.ToLower(label), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if strings.HasPrefix(matchKey(w), q) {
			return 80 - len(q)
		}
	}
	if idx := strings.Index(nlabel, q); idx >= 0 {
		return 60 - idx
	}
	for _, syn := range synonyms {
		if strings.Contains(matchKey(syn), q) {
			return 40
		}
	}
	return -1
}

// Suggest returns catalog codes for kind matching query, best first, skipping
// already-selected codes. An empty query returns the full catalog in its
// canonical order.
func Suggest(kind, query, lang string, selected []string) []string {
	entries, ok := kinds[kind]
	if !ok {
		return nil
	}
	chosen := make(map[string]struct{}, len(selected))
	for _, code := range selected {
		chosen[code] = struct{}{}
	}

	q := matchKey(query)
	type scored struct {
		code  string
		score int
	}
	list := make([]scored, 0, len(entries))
	for _, e := range entries {
		if _, ok := chosen[e.Code]; ok {
			continue
		}
		label := e.EN
		if lang == "cs" {
			label = e.CS
		}
		s := score(label, e.Synonyms, q)
		if q != "" && s < 0 {
			continue
		}
		list = append(list, scored{code: e.Code, score: s})
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].score > list[j].score })

	out := make([]string, len(list))
	for i, item := range list {
		out[i] = item.code
	}
	return out
}
