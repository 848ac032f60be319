package aris

// Byte offsets into a feed line, zero indexed and end exclusive
const (
	recordTypeStart = 34
	recordTypeEnd   = 40

	clientNameStart = 68
	clientNameEnd   = 98

	licenceNumberStart = 47
	licenceNumberEnd   = 62

	classStart = 108
	classEnd   = 112

	statusStart = 115
	statusEnd   = 193

	expiryYearStart  = 193
	expiryMonthStart = 195
	expiryDayStart   = 197
	expiryDayEnd     = 199

	medicalDueStart = 68
	medicalDueEnd   = 74

	commentTagStart = 68
	commentTagEnd   = 75
	commentStart    = 75
	commentEnd      = 128
)

const (
	RecordTypeDriver = "100001"
	RecordTypeDetail = "210001"

	commentTag         = "9999991"
	medicalDueMarker   = "MEDICAL DUE DATE"
	actionsCountMarker = "ACTIONS COUNT"

	century = "20"
)
