package repository

import (
	"gorm.io/gorm"

	"research-agenda/backend/internal/model"
	pkgerrors "research-agenda/backend/pkg/errors"
)

// tagLink 描述一张活动-标签关联表
type tagLink struct {
	table  string
	column string
}

var (
	manuscriptTags = tagLink{table: "manuscript_tags", column: "manuscript_id"}
	conferenceTags = tagLink{table: "conference_tags", column: "conference_id"}
	meetingTags    = tagLink{table: "meeting_tags", column: "meeting_id"}

	allTagLinks = []tagLink{manuscriptTags, conferenceTags, meetingTags}
)

// dedupeIDs 去重并保持首次出现的顺序
func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// verifyOwned 校验所有标签都属于 userID，否则返回 ErrTagNotOwned
func verifyOwned(tx *gorm.DB, userID int64, tagIDs []int64) error {
	var count int64
	if err := tx.Model(&model.Tag{}).
		Where("id IN ? AND user_id = ?", tagIDs, userID).
		Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(tagIDs)) {
		return pkgerrors.ErrTagNotOwned
	}
	return nil
}

// attach 为活动插入关联行；列表为空时不发出任何语句
func (l tagLink) attach(tx *gorm.DB, activityID, userID int64, tagIDs []int64) error {
	ids := dedupeIDs(tagIDs)
	if len(ids) == 0 {
		return nil
	}
	if err := verifyOwned(tx, userID, ids); err != nil {
		return err
	}
	rows := make([]map[string]interface{}, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, map[string]interface{}{l.column: activityID, "tag_id": id})
	}
	return tx.Table(l.table).Create(rows).Error
}

// clear 删除活动的全部关联行
func (l tagLink) clear(tx *gorm.DB, activityID int64) error {
	return tx.Exec("DELETE FROM "+l.table+" WHERE "+l.column+" = ?", activityID).Error
}

// replace 先删后插，整体替换活动的标签集合
func (l tagLink) replace(tx *gorm.DB, activityID, userID int64, tagIDs []int64) error {
	if err := l.clear(tx, activityID); err != nil {
		return err
	}
	return l.attach(tx, activityID, userID, tagIDs)
}

// removeTag 删除某个标签在该关联表中的全部行
func (l tagLink) removeTag(tx *gorm.DB, tagID int64) error {
	return tx.Exec("DELETE FROM "+l.table+" WHERE tag_id = ?", tagID).Error
}

type linkedTag struct {
	ActivityID int64
	model.Tag
}

// load 按活动 ID 批量解析标签，只返回 userID 拥有的标签
func (l tagLink) load(db *gorm.DB, userID int64, activityIDs []int64) (map[int64][]model.Tag, error) {
	out := make(map[int64][]model.Tag, len(activityIDs))
	if len(activityIDs) == 0 {
		return out, nil
	}
	var rows []linkedTag
	err := db.Table("tags").
		Select("l."+l.column+" AS activity_id, tags.*").
		Joins("JOIN "+l.table+" l ON l.tag_id = tags.id").
		Where("l."+l.column+" IN ? AND tags.user_id = ?", activityIDs, userID).
		Order("tags.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ActivityID] = append(out[row.ActivityID], row.Tag)
	}
	return out, nil
}

// tagsOrEmpty 返回非 nil 的标签列表
func tagsOrEmpty(tags []model.Tag) []model.Tag {
	if tags == nil {
		return []model.Tag{}
	}
	return tags
}

// deleteReminders 删除指向某活动的提醒
func deleteReminders(tx *gorm.DB, activityType string, activityID, userID int64) error {
	return tx.Where("activity_type = ? AND activity_id = ? AND user_id = ?", activityType, activityID, userID).
		Delete(&model.Reminder{}).Error
}
