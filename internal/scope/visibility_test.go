package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Lousuarez/LourenTask/internal/model"
)

func sampleTasks() []model.Task {
	return []model.Task{
		{ID: 1, ResponsibleID: 10, SectorID: 100},
		{ID: 2, ResponsibleID: 20, SectorID: 100},
		{ID: 3, ResponsibleID: 20, SectorID: 200},
		{ID: 4, ResponsibleID: 10, SectorID: 200},
	}
}

func taskIDs(tasks []model.Task) []uint {
	ids := make([]uint, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}

func TestFilterVisible(t *testing.T) {
	tests := []struct {
		name string
		user *model.User
		want []uint
	}{
		{
			name: "ALL returns everything",
			user: &model.User{ID: 10, VisibilityScope: model.VisibilityAll},
			want: []uint{1, 2, 3, 4},
		},
		{
			name: "OWN keeps only assignments",
			user: &model.User{ID: 10, VisibilityScope: model.VisibilityOwn},
			want: []uint{1, 4},
		},
		{
			name: "SECTOR keeps permitted sectors",
			user: &model.User{ID: 99, VisibilityScope: model.VisibilitySector, VisibleSectorIDs: model.IDArray{100}},
			want: []uint{1, 2},
		},
		{
			name: "SECTOR always includes own assignments",
			user: &model.User{ID: 10, VisibilityScope: model.VisibilitySector, VisibleSectorIDs: model.IDArray{100}},
			want: []uint{1, 2, 4},
		},
		{
			name: "SECTOR with empty permitted set degrades to OWN",
			user: &model.User{ID: 20, VisibilityScope: model.VisibilitySector},
			want: []uint{2, 3},
		},
		{
			name: "unknown scope treated as ALL",
			user: &model.User{ID: 10, VisibilityScope: "WHATEVER"},
			want: []uint{1, 2, 3, 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterVisible(tt.user, sampleTasks())
			assert.Equal(t, tt.want, taskIDs(got))
		})
	}
}

func TestFilterVisibleOwnNeverLeaksOthers(t *testing.T) {
	user := &model.User{ID: 10, VisibilityScope: model.VisibilityOwn}
	for _, task := range FilterVisible(user, sampleTasks()) {
		assert.Equal(t, user.ID, task.ResponsibleID)
	}
}
