// Copyright (c) 2026 Forkful. All rights reserved.
// Author: dev@forkful.app

package recipe

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
TestListConditions_PlaceholderAlignment checks that the count statement's
placeholder count always equals its argument count. The count query binds
only the filter values while the list query prepends the viewer ID, so the
same conditions are rendered with two different starting indexes.
*/
func TestListConditions_PlaceholderAlignment(t *testing.T) {
	tests := []struct {
		name       string
		filter     Filter
		wantValues int
		wantCount  string
		wantList   string
	}{
		{
			"no_filters",
			Filter{},
			0,
			"WHERE TRUE",
			"WHERE TRUE",
		},
		{
			"category_only",
			Filter{Category: CategoryDinner},
			1,
			"WHERE TRUE AND r.category = $1",
			"WHERE TRUE AND r.category = $2",
		},
		{
			"all_filters",
			Filter{Category: CategoryDinner, Query: "pho", AuthorID: 7},
			3,
			"WHERE TRUE AND r.category = $1 AND r.title ILIKE $2 AND r.author_id = $3",
			"WHERE TRUE AND r.category = $2 AND r.title ILIKE $3 AND r.author_id = $4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exprs, values := listConditions(tt.filter)

			require.Len(t, values, tt.wantValues)
			assert.Equal(t, tt.wantCount, buildListWhere(exprs, 1))
			assert.Equal(t, tt.wantList, buildListWhere(exprs, 2))

			// The count statement receives exactly the filter values, so
			// its placeholder count must match len(values).
			assert.Equal(t, tt.wantValues, strings.Count(buildListWhere(exprs, 1), "$"))
		})
	}
}
