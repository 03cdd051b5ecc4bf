package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Category 任务类别，封闭枚举，新增类别需要同步修改 Keys 与默认表
type Category string

const (
	// CategoryCommunication 传播类任务（分享/扩散）
	CategoryCommunication Category = "communication"
	// CategoryCommunity 社区类任务，含两个子类型
	CategoryCommunity Category = "community"
	// CategoryOriginal 原创类任务，每周期至多一篇，登记后可修改
	CategoryOriginal Category = "original"
)

// SubType 社区类任务子类型
type SubType string

const (
	// SubTypeNone 无子类型（communication/original）
	SubTypeNone SubType = ""
	// SubTypeTG 群聊参与
	SubTypeTG SubType = "tg"
	// SubTypeSpeaking 主持场次发言（更稀缺、分值更高）
	SubTypeSpeaking SubType = "speaking"
)

// Key 唯一标识一个类别/子类型组合
type Key struct {
	Category Category `json:"category"`
	SubType  SubType  `json:"subType,omitempty"`
}

// String 返回 "category" 或 "category/subType" 形式的键
func (k Key) String() string {
	if k.SubType == SubTypeNone {
		return string(k.Category)
	}
	return string(k.Category) + "/" + string(k.SubType)
}

// Keys 返回目录中全部有效键，顺序固定
func Keys() []Key {
	return []Key{
		{Category: CategoryCommunication},
		{Category: CategoryCommunity, SubType: SubTypeTG},
		{Category: CategoryCommunity, SubType: SubTypeSpeaking},
		{Category: CategoryOriginal},
	}
}

// Spec 描述一个类别/子类型的提交规则
type Spec struct {
	Quota           int    `json:"quota" yaml:"quota"`                // 每周期配额，0 表示停用
	PointValue      int    `json:"pointValue" yaml:"point_value"`     // 每条通过提交的积分
	RequiresLink    bool   `json:"requiresLink" yaml:"requires_link"` // 是否要求内容链接
	EvidenceMin     int    `json:"evidenceMin" yaml:"evidence_min"`   // 证据文件数下限
	EvidenceMax     int    `json:"evidenceMax" yaml:"evidence_max"`   // 证据文件数上限
	RequiresMetrics bool   `json:"requiresMetrics" yaml:"requires_metrics"`
	Enabled         bool   `json:"enabled" yaml:"enabled"`
	Topic           string `json:"topic,omitempty" yaml:"topic"` // 原创类主题文案
}

// ErrUnknownCategory 未知的类别/子类型组合
var ErrUnknownCategory = errors.New("UNKNOWN_CATEGORY")

// Catalog 任务目录：内置默认值 + 文件覆盖 + 远程覆盖
// 远程配置获取失败时静默保留当前值，绝不因拉取失败停用提交
type Catalog struct {
	mu             sync.RWMutex
	specs          map[Key]Spec
	communityQuota int // 社区类共享父配额，双重上限规则使用
}

// Default 构建带内置默认值的任务目录
func Default() *Catalog {
	return &Catalog{
		specs: map[Key]Spec{
			{Category: CategoryCommunication}: {
				Quota: 5, PointValue: 10,
				RequiresLink: true, EvidenceMin: 1, EvidenceMax: 1,
				Enabled: true,
			},
			{Category: CategoryCommunity, SubType: SubTypeTG}: {
				Quota: 3, PointValue: 15,
				EvidenceMin: 1, EvidenceMax: 1,
				Enabled: true,
			},
			{Category: CategoryCommunity, SubType: SubTypeSpeaking}: {
				Quota: 1, PointValue: 30,
				// 主持场次需要前后对照两张截图
				EvidenceMin: 2, EvidenceMax: 2,
				Enabled: true,
			},
			{Category: CategoryOriginal}: {
				Quota: 1, PointValue: 50,
				RequiresLink: true, EvidenceMin: 1, EvidenceMax: 9,
				RequiresMetrics: true,
				Enabled:         true,
				Topic:           "本周社区话题",
			},
		},
		communityQuota: 3,
	}
}

// Describe 查询类别/子类型的提交规则
func (c *Catalog) Describe(category Category, subType SubType) (Spec, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	spec, ok := c.specs[Key{Category: category, SubType: subType}]
	if !ok {
		return Spec{}, fmt.Errorf("%w: %s/%s", ErrUnknownCategory, category, subType)
	}
	return spec, nil
}

// CommunityQuota 返回社区类共享父配额
func (c *Catalog) CommunityQuota() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.communityQuota
}

// All 返回全部规则的只读快照，键为 Key.String()
func (c *Catalog) All() map[string]Spec {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]Spec, len(c.specs))
	for k, v := range c.specs {
		out[k.String()] = v
	}
	return out
}

// fileOverrides 目录覆盖文件结构（YAML）
type fileOverrides struct {
	CommunityQuota *int `yaml:"community_quota"`
	Categories     map[string]struct {
		Quota      *int    `yaml:"quota"`
		PointValue *int    `yaml:"point_value"`
		Enabled    *bool   `yaml:"enabled"`
		Topic      *string `yaml:"topic"`
	} `yaml:"categories"`
}

// LoadFile 应用目录覆盖文件，文件缺失或非法时返回错误由调用方决定降级
func (c *Catalog) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read catalog file: %w", err)
	}

	var overrides fileOverrides
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("parse catalog file: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if overrides.CommunityQuota != nil && *overrides.CommunityQuota >= 0 {
		c.communityQuota = *overrides.CommunityQuota
	}

	for _, key := range Keys() {
		o, ok := overrides.Categories[key.String()]
		if !ok {
			continue
		}
		spec := c.specs[key]
		if o.Quota != nil && *o.Quota >= 0 {
			spec.Quota = *o.Quota
		}
		if o.PointValue != nil && *o.PointValue >= 0 {
			spec.PointValue = *o.PointValue
		}
		if o.Enabled != nil {
			spec.Enabled = *o.Enabled
		}
		if o.Topic != nil {
			spec.Topic = *o.Topic
		}
		c.specs[key] = spec
	}

	return nil
}

// OriginalOverride 远程配置协作方下发的原创类覆盖项
// 指针字段为 nil 时保留当前值
type OriginalOverride struct {
	Topic   *string `json:"topic"`
	Quota   *int    `json:"quota"`
	Enabled *bool   `json:"enabled"`
}

// RemoteConfigFetcher 远程配置协作方
type RemoteConfigFetcher interface {
	FetchOriginalConfig(ctx context.Context) (OriginalOverride, error)
}

// ApplyRemote 拉取并合并远程原创类配置
// 拉取或解析失败时保持内置默认值不变并返回 false，提交能力不受影响
func (c *Catalog) ApplyRemote(ctx context.Context, fetcher RemoteConfigFetcher) bool {
	if fetcher == nil {
		return false
	}

	override, err := fetcher.FetchOriginalConfig(ctx)
	if err != nil {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := Key{Category: CategoryOriginal}
	spec := c.specs[key]
	if override.Topic != nil {
		spec.Topic = *override.Topic
	}
	if override.Quota != nil && *override.Quota >= 0 {
		spec.Quota = *override.Quota
	}
	if override.Enabled != nil {
		spec.Enabled = *override.Enabled
	}
	c.specs[key] = spec

	return true
}
