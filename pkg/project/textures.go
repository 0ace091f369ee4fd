package project

import "fmt"

// TextureIndexError 特效的纹理索引超出纹理表范围
type TextureIndexError struct {
	Effect string
	Index  int
	Count  int
}

func (e *TextureIndexError) Error() string {
	return fmt.Sprintf("effect %q: texture index %d out of range (%d textures)", e.Effect, e.Index, e.Count)
}

// CheckTextures 检查所有特效的纹理索引是否在 [0, count) 内
//
// 返回第一个越界的 *TextureIndexError，全部合法时返回 nil。
func CheckTextures(doc *Document, count int) error {
	for i := range doc.Effects {
		if err := CheckTexture(doc.Effects[i].Name, doc.Effects[i].TextureIndex, count); err != nil {
			return err
		}
	}
	return nil
}

// CheckTexture 检查单个纹理索引，nil 索引总是合法
func CheckTexture(name string, index *int, count int) error {
	if index == nil {
		return nil
	}
	if *index < 0 || *index >= count {
		return &TextureIndexError{Effect: name, Index: *index, Count: count}
	}
	return nil
}
