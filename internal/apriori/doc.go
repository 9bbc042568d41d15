// Package apriori mines frequent itemsets from binary transaction data and
// derives association rules between them.
//
// The package has three parts:
//   - Dataset: an immutable transaction-by-item membership matrix, stored as
//     one bitset of transaction indices per item
//   - Mine: the level-wise Apriori search with anti-monotone candidate pruning
//   - GenerateRules: rule derivation with support, confidence, lift,
//     leverage and conviction
//
// Items are kept in lexicographic order everywhere, so itemsets have a single
// canonical form and every enumeration is reproducible regardless of the
// order transactions were supplied in.
//
// Example usage:
//
//	ds, err := apriori.NewDatasetFromBaskets([][]string{
//		{"Eggs", "Milk"},
//		{"Bread", "Milk"},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fi, err := apriori.Mine(ctx, ds, 0.3)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	rules, err := apriori.GenerateRules(fi, 0.7)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(apriori.FormatRules(rules))
//
// Nothing in this package logs or retries. Every failure wraps one of
// ErrInvalidInput, ErrInvalidParameter or ErrInternalConsistency.
package apriori
