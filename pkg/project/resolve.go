package project

import (
	"fmt"

	"github.com/decker502/omagari/pkg/diag"
)

// LinkStatus 父特效解析结果
type LinkStatus string

const (
	// LinkNone 未设置父特效
	LinkNone LinkStatus = "none"
	// LinkLinked 父特效在前面出现，已关联
	LinkLinked LinkStatus = "linked"
	// LinkForward 父特效名称只在后面出现
	LinkForward LinkStatus = "forward"
	// LinkMissing 文档中不存在该名称
	LinkMissing LinkStatus = "missing"
	// LinkSelf 父名称解析到特效自身，已关联到自身
	LinkSelf LinkStatus = "self"
)

// Link 单个特效的父特效解析结果
type Link struct {
	Index      int        // 特效在文档中的索引
	Name       string     // 特效名称
	ParentName string     // 父特效名称，未设置时为空
	Parent     int        // 关联的父特效索引（LinkSelf 时为自身索引），未关联时为 -1
	Status     LinkStatus // 解析状态
	Shadows    int        // 被本特效覆盖的同名前序特效索引，无则为 -1
}

// Resolve 按文档顺序解析父特效名称
//
// 单次前向遍历：
//   - 名称表随遍历逐步建立
//   - 每个特效先登记自身名称，再查找父名称
//   - 因此只能关联到前面出现的特效或自身；调换顺序会改变结果
//   - 重名时最近的前序特效生效
//   - 父名称等于自身名称时关联到自身，状态为 LinkSelf
func Resolve(doc *Document) []Link {
	return ResolveReport(doc, nil)
}

// ResolveReport 与 Resolve 相同，并把重名和未解析的父特效报告给 sink
func ResolveReport(doc *Document, sink diag.Sink) []Link {
	entries := make([]Entry, len(doc.Effects))
	for i := range doc.Effects {
		entries[i] = Entry{Name: doc.Effects[i].Name, Parent: doc.Effects[i].Parent}
	}
	return ResolveEntries(entries, sink)
}

// Entry 参与名称解析的最小信息：名称和可选的父名称
type Entry struct {
	Name   string
	Parent *string
}

// ResolveEntries 对任意有序条目执行名称解析，导出包也用它重建父子关系
func ResolveEntries(entries []Entry, sink diag.Sink) []Link {
	all := make(map[string]bool, len(entries))
	for _, e := range entries {
		all[e.Name] = true
	}

	seen := make(map[string]int, len(entries))
	links := make([]Link, len(entries))
	for i, e := range entries {
		link := Link{
			Index:   i,
			Name:    e.Name,
			Parent:  -1,
			Status:  LinkNone,
			Shadows: -1,
		}

		if prev, ok := seen[e.Name]; ok {
			link.Shadows = prev
			diag.Report(sink, diag.Hazard{
				Kind:   diag.KindDuplicateName,
				Effect: e.Name,
				Detail: fmt.Sprintf("effect %d reuses the name of effect %d; later children link here", i, prev),
			})
		}
		seen[e.Name] = i

		if e.Parent != nil {
			link.ParentName = *e.Parent
			idx, ok := seen[link.ParentName]
			switch {
			case ok && idx == i:
				link.Parent = i
				link.Status = LinkSelf
				diag.Report(sink, diag.Hazard{
					Kind:   diag.KindSelfParent,
					Effect: e.Name,
					Path:   "parent",
					Detail: fmt.Sprintf("parent %q resolves to the effect itself", link.ParentName),
				})
			case ok:
				link.Parent = idx
				link.Status = LinkLinked
			default:
				link.Status = LinkMissing
				if all[link.ParentName] {
					link.Status = LinkForward
				}
				diag.Report(sink, diag.Hazard{
					Kind:   diag.KindUnresolvedParent,
					Effect: e.Name,
					Path:   "parent",
					Detail: fmt.Sprintf("parent %q is %s", link.ParentName, unresolvedDetail(link.Status)),
				})
			}
		}
		links[i] = link
	}
	return links
}

func unresolvedDetail(s LinkStatus) string {
	switch s {
	case LinkForward:
		return "defined later in the document"
	}
	return "not defined in the document"
}
