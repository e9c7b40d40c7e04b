package orders

const (
	TopicMerchantOrders = "merchant.orders"
	TopicOrderDecisions = "merchant.order.decisions"
)

// Partition key = merchant_id untuk push order (urutan per merchant terjaga),
// order_id untuk keputusan.
func PartitionKey(id string) []byte { return []byte(id) }
