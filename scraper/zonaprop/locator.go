package zonaprop

import "regexp"

var blockMarker = regexp.MustCompile(`const\s+avisoInfo\s*=\s*`)

// LocateBlock finds the `const avisoInfo = {...};` assignment in a posting
// page and returns the object literal with the assignment and the statement
// terminator removed. The closing brace is found by nesting depth, so braces
// inside the object or inside strings do not end the block early. ok is
// false when the marker is missing or the object is not followed by ';'.
func LocateBlock(page string) (string, bool) {
	for _, loc := range blockMarker.FindAllStringIndex(page, -1) {
		open := loc[1]
		if open >= len(page) || page[open] != '{' {
			continue
		}
		end, ok := matchClose(page, open)
		if !ok {
			continue
		}
		next := skipBlank(page, end+1)
		if next < len(page) && page[next] == ';' {
			return page[open : end+1], true
		}
	}
	return "", false
}
