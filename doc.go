/*
Package matcha provides interfaces to verify that AWS-compatible cloud
emulators (such as LocalStack) faithfully implement the core object
storage, key-value table, queue, pub/sub, and function registration API
surfaces.

The Probe interface represents a single end-to-end verification of one
service surface. Probes are composed into ordered suites that report
per-service pass/fail results without needing to make direct calls to the
emulator's API.

The per-service client interfaces (S3Client, DynamoDBClient, SQSClient,
SNSClient, LambdaClient) provide convenience wrappers around the
corresponding APIs. If the stock probes do not fulfill your needs, you can
make API calls through the clients directly.
*/
package matcha
