// internal/adapters/out/gcs/receipt_archive_gcs.go
package gcs

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// ReceiptArchiveGCS implements the checkout's ReceiptArchiver port.
//
// Object layout:
//   - bucket: configured receipt bucket
//   - object: receipts/<yyyy-mm-dd>/<orderId>.json
//
// Receipts are write-once; re-archiving the same order id is a no-op.
type ReceiptArchiveGCS struct {
	Client *storage.Client
	Bucket string
}

func NewReceiptArchiveGCS(client *storage.Client, bucket string) *ReceiptArchiveGCS {
	return &ReceiptArchiveGCS{
		Client: client,
		Bucket: strings.TrimSpace(bucket),
	}
}

func (r *ReceiptArchiveGCS) Archive(ctx context.Context, orderID string, receipt []byte) error {
	if r == nil || r.Client == nil {
		return errors.New("receipt_archive_gcs: nil storage client")
	}

	bucket := strings.TrimSpace(r.Bucket)
	if bucket == "" {
		return errors.New("receipt_archive_gcs: bucket is empty")
	}

	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return errors.New("receipt_archive_gcs: orderID is empty")
	}
	if len(receipt) == 0 {
		return errors.New("receipt_archive_gcs: receipt is empty")
	}

	objName := "receipts/" + time.Now().UTC().Format("2006-01-02") + "/" + orderID + ".json"

	oh := r.Client.Bucket(bucket).Object(objName).If(storage.Conditions{DoesNotExist: true})
	w := oh.NewWriter(ctx)
	w.ContentType = "application/json; charset=utf-8"

	if _, err := w.Write(receipt); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		// 412 means the object already exists; write-once makes that a no-op.
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == 412 {
			return nil
		}
		return err
	}
	return nil
}
