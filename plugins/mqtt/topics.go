package mqtt

import (
	"strings"

	"github.com/gohornet/escrow/pkg/model/escrow"
)

// Topic names
const (
	parameterEscrowID   = "{escrowId}"
	parameterRecordType = "{recordType}"

	// all records of one type, e.g. "escrows/contributionMade"
	topicRecords = "escrows/" + parameterRecordType
	// the records of a single escrow, e.g. "escrows/<id>/voteCast"
	topicEscrowRecords = "escrows/" + parameterEscrowID + "/" + parameterRecordType
)

func topicsForRecord(record escrow.LogRecord) []string {
	return []string{
		strings.Replace(topicRecords, parameterRecordType, record.RecordType(), 1),
		strings.NewReplacer(
			parameterEscrowID, record.Escrow().ToHex(),
			parameterRecordType, record.RecordType(),
		).Replace(topicEscrowRecords),
	}
}
