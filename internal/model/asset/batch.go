// 模型:资产批次模型
// 资产批次与资产明细的数据模型，批次号唯一，金额使用精确小数
package asset

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssetBatch 资产批次模型
// 一次录入产生一个批次，批次号按日期生成（如 20250131、20250131-01）
type AssetBatch struct {
	ID               uint            `json:"id" gorm:"primaryKey;autoIncrement"`                          // 批次唯一标识ID，主键自增
	BatchNo          string          `json:"batch_no" gorm:"uniqueIndex;not null;size:50;comment:批次号"`    // 批次号，唯一索引
	CreatedTime      time.Time       `json:"created_time" gorm:"not null;comment:创建时间"`                   // 创建时间，入库后不再变化
	LastModifiedTime time.Time       `json:"last_modified_time" gorm:"not null;comment:最后修改时间"`           // 最后修改时间，每次变更资产集合时更新
	TotalAmount      decimal.Decimal `json:"total_amount" gorm:"type:decimal(18,2);comment:批次资产总额"`       // 批次内资产金额之和

	// 关联关系
	Assets []*Asset `json:"assets,omitempty" gorm:"foreignKey:BatchID"` // 批次包含的资产明细
}

// Asset 资产明细模型
type Asset struct {
	ID           uint            `json:"id" gorm:"primaryKey;autoIncrement"`                       // 资产唯一标识ID，主键自增
	Name         string          `json:"name" gorm:"not null;size:100;comment:资产名称"`               // 资产名称，最大100字符
	AssetType    AssetType       `json:"asset_type" gorm:"not null;comment:资产类型:1-6"`              // 资产类型枚举
	Amount       decimal.Decimal `json:"amount" gorm:"type:decimal(18,2);not null;comment:资产金额"`   // 资产金额
	MaturityDate *time.Time      `json:"maturity_date" gorm:"comment:到期日"`                         // 到期日，可为空（活期、现金等无到期日）
	BatchID      uint            `json:"batch_id" gorm:"not null;index;comment:所属批次ID"`            // 所属批次ID，外键
	Batch        *AssetBatch     `json:"-" gorm:"foreignKey:BatchID;constraint:OnDelete:CASCADE"`  // 所属批次
}

// AssetType 资产类型枚举
type AssetType int

const (
	AssetTypeBankCurrent         AssetType = 1 // 银行活期
	AssetTypeBankFixed           AssetType = 2 // 银行定期
	AssetTypeDepositInvestment   AssetType = 3 // 存款类投资
	AssetTypeInsuranceInvestment AssetType = 4 // 保险类投资
	AssetTypeCash                AssetType = 5 // 现金
	AssetTypeForeignDebt         AssetType = 6 // 外债
)

// IsValid 检查资产类型是否为合法枚举值
func (t AssetType) IsValid() bool {
	return t >= AssetTypeBankCurrent && t <= AssetTypeForeignDebt
}

// String 返回资产类型的可读名称
func (t AssetType) String() string {
	switch t {
	case AssetTypeBankCurrent:
		return "bank_current"
	case AssetTypeBankFixed:
		return "bank_fixed"
	case AssetTypeDepositInvestment:
		return "deposit_investment"
	case AssetTypeInsuranceInvestment:
		return "insurance_investment"
	case AssetTypeCash:
		return "cash"
	case AssetTypeForeignDebt:
		return "foreign_debt"
	default:
		return "unknown"
	}
}

// TableName 指定资产批次表名
func (AssetBatch) TableName() string {
	return "asset_batches"
}

// TableName 指定资产明细表名
func (Asset) TableName() string {
	return "assets"
}
