package repository

import "errors"

// 参照先が存在しないときに各リポジトリが返す共通エラー
var ErrNotFound = errors.New("not found")
