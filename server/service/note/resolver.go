package note

import (
	"context"
	"strings"
)

// resolveTags converts client tag input into a canonical set of tag IDs.
// Explicit IDs are trusted as-is; existence violations surface as a foreign
// key failure at write time. A free-text list is split on commas, trimmed,
// and deduplicated case-insensitively, then each surviving token is resolved
// to an existing or newly created tag. With no tag input at all the result
// is an empty set, which is a valid state.
func (s *Service) resolveTags(ctx context.Context, tagIDs []int32, tagList *string) ([]int32, error) {
	if tagIDs != nil {
		return tagIDs, nil
	}
	if tagList == nil {
		return []int32{}, nil
	}

	names := splitTagList(*tagList)
	ids := make([]int32, 0, len(names))
	for _, name := range names {
		tag, err := s.tags.FindOrCreate(ctx, name, "")
		if err != nil {
			return nil, err
		}
		ids = append(ids, tag.ID)
	}
	return ids, nil
}

// splitTagList tokenizes a comma-separated tag list. Empty tokens are
// dropped; duplicates differing only by case collapse onto the first
// occurrence, whose capitalization is kept for tag creation.
func splitTagList(list string) []string {
	seen := make(map[string]struct{})
	names := []string{}
	for _, token := range strings.Split(list, ",") {
		name := strings.TrimSpace(token)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		names = append(names, name)
	}
	return names
}
