package metadata

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/ajcwebdev/autoshow-sub002/internal/utils"
)

// ReadURLList reads one URL per line. Blank lines and lines starting with
// "#" are ignored and duplicates keep their first position.
func ReadURLList(path string) ([]string, error) {
	content, err := utils.ReadTextFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read URL list %s: %w", path, err)
	}

	urls := lo.Filter(nonEmptyLines(content), func(line string, _ int) bool {
		return !strings.HasPrefix(line, "#")
	})
	urls = lo.Uniq(urls)

	if len(urls) == 0 {
		return nil, &utils.ValidationError{Field: "urls", Message: fmt.Sprintf("no URLs found in %s", path)}
	}
	return urls, nil
}
