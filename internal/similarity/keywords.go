package similarity

import "strings"

var keywordLists = map[string]string{
	"python": `False None True and as assert async await break class continue def del elif else except
		finally for from global if import in is lambda nonlocal not or pass raise return try while with yield`,
	"go": `break case chan const continue default defer else fallthrough for func go goto if import
		interface map package range return select struct switch type var`,
	"java": `abstract assert boolean break byte case catch char class const continue default do double else
		enum extends final finally float for goto if implements import instanceof int interface long native
		new package private protected public return short static strictfp super switch synchronized this
		throw throws transient try void volatile while`,
	"javascript": `async await break case catch class const continue debugger default delete do else export
		extends finally for function if import in instanceof let new return super switch this throw try
		typeof var void while with yield`,
}

var keywordSets = buildKeywordSets()

func buildKeywordSets() map[string]map[string]struct{} {
	sets := make(map[string]map[string]struct{}, len(keywordLists))
	for lang, list := range keywordLists {
		set := make(map[string]struct{})
		for _, kw := range strings.Fields(list) {
			set[kw] = struct{}{}
		}
		sets[lang] = set
	}
	sets["js"] = sets["javascript"]
	sets["typescript"] = sets["javascript"]
	sets["golang"] = sets["go"]
	return sets
}

// Keywords returns the reserved words of language, or nil when the language
// is not known. Unknown languages score every token with the same weight.
func Keywords(language string) map[string]struct{} {
	return keywordSets[strings.ToLower(strings.TrimSpace(language))]
}
