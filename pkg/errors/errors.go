package errors

import "errors"

// ErrStoreUnavailable 数据库不可达：读操作降级为空结果，写操作必须显式失败
var ErrStoreUnavailable = errors.New("数据存储不可用")

// ErrForbidden 调用方无权执行该操作
var ErrForbidden = errors.New("无权限访问")

// ErrTagNotOwned 关联的标签不存在或不属于当前用户
var ErrTagNotOwned = errors.New("标签不存在或不属于当前用户")
