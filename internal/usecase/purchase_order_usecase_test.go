package usecase

import (
	"context"
	"testing"

	"pos/internal/domain/model"

	"github.com/stretchr/testify/assert"
)

func newPOFixture() (*fakeStore, *PurchaseOrderUsecase) {
	store := newFakeStore()
	tx := newFakeTxManager(store)
	return store, NewPurchaseOrderUsecase(tx, newTestLedger(), NewSequenceGenerator())
}

func seedApprovedPO(t *testing.T, store *fakeStore, uc *PurchaseOrderUsecase, quantities ...int64) PurchaseOrderOutput {
	t.Helper()
	ctx := context.Background()

	vendor := store.seedVendor(model.Vendor{Name: "acme", IsActive: true})

	items := make([]PurchaseOrderItemInput, 0, len(quantities))
	for i, q := range quantities {
		p := store.seedProduct(model.Product{
			Name:     "item",
			SKU:      "SKU-" + string(rune('A'+i)),
			IsActive: true,
		})
		items = append(items, PurchaseOrderItemInput{ProductID: p.ID, QuantityOrdered: q, UnitCost: 100})
	}

	po, err := uc.CreatePurchaseOrder(ctx, CreatePurchaseOrderInput{
		VendorID:        vendor.ID,
		CreatedByUserID: 1,
		Items:           items,
	})
	assert.NoError(t, err)

	_, err = uc.SubmitPurchaseOrder(ctx, po.ID)
	assert.NoError(t, err)
	out, err := uc.ApprovePurchaseOrder(ctx, po.ID)
	assert.NoError(t, err)
	return out
}

func TestPurchaseOrderUsecase_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("DRAFTで起票され採番される", func(t *testing.T) {
		store, uc := newPOFixture()
		vendor := store.seedVendor(model.Vendor{Name: "acme", IsActive: true})
		p := store.seedProduct(model.Product{Name: "coffee", SKU: "CF-1", IsActive: true})

		out, err := uc.CreatePurchaseOrder(ctx, CreatePurchaseOrderInput{
			VendorID:        vendor.ID,
			CreatedByUserID: 1,
			ShippingCost:    1200,
			Items:           []PurchaseOrderItemInput{{ProductID: p.ID, QuantityOrdered: 50, UnitCost: 300}},
		})

		assert.NoError(t, err)
		assert.Equal(t, "PO-000001", out.Number)
		assert.Equal(t, string(model.PurchaseOrderStatusDraft), out.Status)
		assert.Len(t, out.Items, 1)
		assert.Equal(t, int64(50), out.Items[0].QuantityOrdered)
		assert.Equal(t, int64(0), out.Items[0].QuantityReceived)

		// 起票しただけでは在庫は動かない
		assert.Equal(t, int64(0), store.productQuantity(p.ID))
	})

	t.Run("休止中の仕入先には起票できない", func(t *testing.T) {
		store, uc := newPOFixture()
		vendor := store.seedVendor(model.Vendor{Name: "gone", IsActive: false})
		p := store.seedProduct(model.Product{Name: "coffee", SKU: "CF-1", IsActive: true})

		_, err := uc.CreatePurchaseOrder(ctx, CreatePurchaseOrderInput{
			VendorID:        vendor.ID,
			CreatedByUserID: 1,
			Items:           []PurchaseOrderItemInput{{ProductID: p.ID, QuantityOrdered: 10, UnitCost: 100}},
		})

		he, ok := AsHTTPError(err)
		assert.True(t, ok)
		assert.Equal(t, 400, he.Status)
	})

	t.Run("明細なしは拒否", func(t *testing.T) {
		store, uc := newPOFixture()
		vendor := store.seedVendor(model.Vendor{Name: "acme", IsActive: true})

		_, err := uc.CreatePurchaseOrder(ctx, CreatePurchaseOrderInput{
			VendorID:        vendor.ID,
			CreatedByUserID: 1,
		})

		he, ok := AsHTTPError(err)
		assert.True(t, ok)
		assert.Equal(t, 400, he.Status)
	})
}

func TestPurchaseOrderUsecase_Transitions(t *testing.T) {
	ctx := context.Background()

	t.Run("DRAFT→SUBMITTED→APPROVEDの順でしか進めない", func(t *testing.T) {
		store, uc := newPOFixture()
		vendor := store.seedVendor(model.Vendor{Name: "acme", IsActive: true})
		p := store.seedProduct(model.Product{Name: "coffee", SKU: "CF-1", IsActive: true})

		po, _ := uc.CreatePurchaseOrder(ctx, CreatePurchaseOrderInput{
			VendorID:        vendor.ID,
			CreatedByUserID: 1,
			Items:           []PurchaseOrderItemInput{{ProductID: p.ID, QuantityOrdered: 10, UnitCost: 100}},
		})

		// DRAFTのままapproveは不可
		_, err := uc.ApprovePurchaseOrder(ctx, po.ID)
		var ite *InvalidTransitionError
		assert.ErrorAs(t, err, &ite)
		assert.Equal(t, string(model.PurchaseOrderStatusDraft), ite.From)

		out, err := uc.SubmitPurchaseOrder(ctx, po.ID)
		assert.NoError(t, err)
		assert.Equal(t, string(model.PurchaseOrderStatusSubmitted), out.Status)

		out, err = uc.ApprovePurchaseOrder(ctx, po.ID)
		assert.NoError(t, err)
		assert.Equal(t, string(model.PurchaseOrderStatusApproved), out.Status)

		// 再submitは不可
		_, err = uc.SubmitPurchaseOrder(ctx, po.ID)
		assert.ErrorAs(t, err, &ite)
	})

	t.Run("受領前ならキャンセルできる", func(t *testing.T) {
		store, uc := newPOFixture()
		vendor := store.seedVendor(model.Vendor{Name: "acme", IsActive: true})
		p := store.seedProduct(model.Product{Name: "coffee", SKU: "CF-1", IsActive: true})

		po, _ := uc.CreatePurchaseOrder(ctx, CreatePurchaseOrderInput{
			VendorID:        vendor.ID,
			CreatedByUserID: 1,
			Items:           []PurchaseOrderItemInput{{ProductID: p.ID, QuantityOrdered: 10, UnitCost: 100}},
		})

		out, err := uc.CancelPurchaseOrder(ctx, po.ID)
		assert.NoError(t, err)
		assert.Equal(t, string(model.PurchaseOrderStatusCanceled), out.Status)
	})

	t.Run("受領が始まった発注はキャンセルできない", func(t *testing.T) {
		store, uc := newPOFixture()
		po := seedApprovedPO(t, store, uc, 10)

		_, err := uc.ReceivePurchaseOrder(ctx, po.ID, []ReceiveLineInput{
			{ItemID: po.Items[0].ID, Quantity: 3},
		})
		assert.NoError(t, err)

		_, err = uc.CancelPurchaseOrder(ctx, po.ID)
		var ite *InvalidTransitionError
		assert.ErrorAs(t, err, &ite)
		assert.Equal(t, string(model.PurchaseOrderStatusPartiallyReceived), ite.From)
	})

	t.Run("closeはRECEIVEDからのみ", func(t *testing.T) {
		store, uc := newPOFixture()
		po := seedApprovedPO(t, store, uc, 5)

		_, err := uc.ClosePurchaseOrder(ctx, po.ID)
		var ite *InvalidTransitionError
		assert.ErrorAs(t, err, &ite)

		_, err = uc.ReceivePurchaseOrder(ctx, po.ID, []ReceiveLineInput{
			{ItemID: po.Items[0].ID, Quantity: 5},
		})
		assert.NoError(t, err)

		out, err := uc.ClosePurchaseOrder(ctx, po.ID)
		assert.NoError(t, err)
		assert.Equal(t, string(model.PurchaseOrderStatusClosed), out.Status)
	})

	t.Run("存在しない発注は404", func(t *testing.T) {
		_, uc := newPOFixture()
		_, err := uc.SubmitPurchaseOrder(ctx, 999)
		he, ok := AsHTTPError(err)
		assert.True(t, ok)
		assert.Equal(t, 404, he.Status)
	})
}

func TestPurchaseOrderUsecase_Receive(t *testing.T) {
	ctx := context.Background()

	t.Run("部分受領でPARTIALLY_RECEIVEDになり在庫が増える", func(t *testing.T) {
		store, uc := newPOFixture()
		po := seedApprovedPO(t, store, uc, 100)
		productID := po.Items[0].ProductID

		out, err := uc.ReceivePurchaseOrder(ctx, po.ID, []ReceiveLineInput{
			{ItemID: po.Items[0].ID, Quantity: 50, Notes: "first truck"},
		})

		assert.NoError(t, err)
		assert.Equal(t, string(model.PurchaseOrderStatusPartiallyReceived), out.Status)
		assert.Equal(t, int64(50), out.Items[0].QuantityReceived)
		assert.Equal(t, int64(50), store.productQuantity(productID))

		mutations := store.mutationsFor(productID)
		assert.Len(t, mutations, 1)
		assert.Equal(t, model.MutationSourcePOReceipt, mutations[0].SourceKind)
		assert.Equal(t, po.Number, mutations[0].SourceRef)
	})

	t.Run("全量受領でRECEIVEDになる", func(t *testing.T) {
		store, uc := newPOFixture()
		po := seedApprovedPO(t, store, uc, 100)
		productID := po.Items[0].ProductID

		_, err := uc.ReceivePurchaseOrder(ctx, po.ID, []ReceiveLineInput{
			{ItemID: po.Items[0].ID, Quantity: 50},
		})
		assert.NoError(t, err)

		out, err := uc.ReceivePurchaseOrder(ctx, po.ID, []ReceiveLineInput{
			{ItemID: po.Items[0].ID, Quantity: 50},
		})
		assert.NoError(t, err)
		assert.Equal(t, string(model.PurchaseOrderStatusReceived), out.Status)
		assert.Equal(t, int64(100), store.productQuantity(productID))

		// Ledgerには増分のみが2回刻まれる
		mutations := store.mutationsFor(productID)
		assert.Len(t, mutations, 2)
		assert.Equal(t, int64(50), mutations[0].Delta)
		assert.Equal(t, int64(50), mutations[1].Delta)
	})

	t.Run("発注数を超える受領はOverReceiptで落ちて何も残らない", func(t *testing.T) {
		store, uc := newPOFixture()
		po := seedApprovedPO(t, store, uc, 10)
		productID := po.Items[0].ProductID

		_, err := uc.ReceivePurchaseOrder(ctx, po.ID, []ReceiveLineInput{
			{ItemID: po.Items[0].ID, Quantity: 7},
		})
		assert.NoError(t, err)

		_, err = uc.ReceivePurchaseOrder(ctx, po.ID, []ReceiveLineInput{
			{ItemID: po.Items[0].ID, Quantity: 4},
		})

		var ore *OverReceiptError
		assert.ErrorAs(t, err, &ore)
		assert.Equal(t, int64(10), ore.QuantityOrdered)
		assert.Equal(t, int64(7), ore.AlreadyReceived)
		assert.Equal(t, int64(4), ore.Receiving)

		// 落ちた回の分は在庫にもLedgerにも残らない
		assert.Equal(t, int64(7), store.productQuantity(productID))
		assert.Len(t, store.mutationsFor(productID), 1)
	})

	t.Run("複数行のうち1行が超過なら全行が巻き戻る", func(t *testing.T) {
		store, uc := newPOFixture()
		po := seedApprovedPO(t, store, uc, 10, 5)
		okProduct := po.Items[0].ProductID
		badProduct := po.Items[1].ProductID

		_, err := uc.ReceivePurchaseOrder(ctx, po.ID, []ReceiveLineInput{
			{ItemID: po.Items[0].ID, Quantity: 10},
			{ItemID: po.Items[1].ID, Quantity: 6},
		})

		var ore *OverReceiptError
		assert.ErrorAs(t, err, &ore)
		assert.Equal(t, int64(0), store.productQuantity(okProduct))
		assert.Equal(t, int64(0), store.productQuantity(badProduct))
		assert.Empty(t, store.mutationsFor(okProduct))
	})

	t.Run("DRAFTの発注は受領できない", func(t *testing.T) {
		store, uc := newPOFixture()
		vendor := store.seedVendor(model.Vendor{Name: "acme", IsActive: true})
		p := store.seedProduct(model.Product{Name: "coffee", SKU: "CF-1", IsActive: true})

		po, _ := uc.CreatePurchaseOrder(ctx, CreatePurchaseOrderInput{
			VendorID:        vendor.ID,
			CreatedByUserID: 1,
			Items:           []PurchaseOrderItemInput{{ProductID: p.ID, QuantityOrdered: 10, UnitCost: 100}},
		})

		_, err := uc.ReceivePurchaseOrder(ctx, po.ID, []ReceiveLineInput{
			{ItemID: po.Items[0].ID, Quantity: 1},
		})

		var ite *InvalidTransitionError
		assert.ErrorAs(t, err, &ite)
	})

	t.Run("他の発注のitem_idは弾く", func(t *testing.T) {
		store, uc := newPOFixture()
		po1 := seedApprovedPO(t, store, uc, 10)
		po2 := seedApprovedPO(t, store, uc, 10)

		_, err := uc.ReceivePurchaseOrder(ctx, po1.ID, []ReceiveLineInput{
			{ItemID: po2.Items[0].ID, Quantity: 1},
		})

		he, ok := AsHTTPError(err)
		assert.True(t, ok)
		assert.Equal(t, 400, he.Status)
	})
}
