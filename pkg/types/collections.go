package types

// Standard collection names.
const (
	UsersCollection    = "users"
	ListingsCollection = "listings"
	BookingsCollection = "bookings"
	MessagesCollection = "messages"
	ReviewsCollection  = "reviews"
	PaymentsCollection = "payments"
)

// CollectionSpec pairs a collection name with the fields written to its
// header row when the file is first created. Records are not checked
// against Fields.
type CollectionSpec struct {
	Name   string
	Fields []string
}

// Catalog lists the collections the marketplace knows about, in
// initialization order.
var Catalog = []CollectionSpec{
	{UsersCollection, []string{"id", "email", "name", "passwordHash", "role", "phone", "avatarUrl", "createdAt", "updatedAt"}},
	{ListingsCollection, []string{"id", "title", "description", "price", "currency", "category", "location", "images", "ownerId", "available", "createdAt", "updatedAt"}},
	{BookingsCollection, []string{"id", "listingId", "renterId", "startDate", "endDate", "totalPrice", "status", "paymentId", "createdAt", "updatedAt"}},
	{MessagesCollection, []string{"id", "conversationId", "senderId", "receiverId", "listingId", "content", "read", "createdAt", "updatedAt"}},
	{ReviewsCollection, []string{"id", "bookingId", "listingId", "reviewerId", "rating", "comment", "createdAt", "updatedAt"}},
	{PaymentsCollection, []string{"id", "bookingId", "amount", "currency", "status", "provider", "providerRef", "createdAt", "updatedAt"}},
}

// StandardCollectionNames lists the catalog collection names.
var StandardCollectionNames = func() []string {
	names := make([]string, len(Catalog))
	for i, c := range Catalog {
		names[i] = c.Name
	}
	return names
}()

// LookupCollection returns the catalog entry for name.
func LookupCollection(name string) (CollectionSpec, bool) {
	for _, c := range Catalog {
		if c.Name == name {
			return c, true
		}
	}
	return CollectionSpec{}, false
}
